package crm

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// SignupInput registers a new organiser.
type SignupInput struct {
	Username         string
	Email            string
	FirstName        string
	LastName         string
	Password         string
	OrganizationName string
}

// SignupOrganiser creates an organiser account and its organization as one
// unit and returns the organiser principal.
func (s *Service) SignupOrganiser(ctx context.Context, in SignupInput) (access.Principal, *models.Organization, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.OrganizationName = strings.TrimSpace(in.OrganizationName)

	errs := fieldErrors{}
	validateUsername(errs, in.Username)
	validateEmail(errs, "email", in.Email, false)
	if len(in.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	if err := errs.err(); err != nil {
		return access.Principal{}, nil, err
	}

	if in.OrganizationName == "" {
		in.OrganizationName = in.Username
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return access.Principal{}, nil, err
	}

	accountID, err := newID()
	if err != nil {
		return access.Principal{}, nil, err
	}
	orgID, err := newID()
	if err != nil {
		return access.Principal{}, nil, err
	}

	now := s.now()
	account := &models.Account{
		AccountID:    accountID,
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsOrganiser:  true,
		IsAgent:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	org := &models.Organization{
		OrgID:          orgID,
		Name:           in.OrganizationName,
		OwnerAccountID: accountID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.stores.Organizations.CreateWithOwner(ctx, account, org); err != nil {
		if errors.Is(err, store.ErrAccountAlreadyExists) {
			return access.Principal{}, nil, &ValidationError{Fields: map[string]string{"username": "is already taken"}}
		}
		return access.Principal{}, nil, mapStoreError(err, "signup")
	}

	log.Info().
		Str("org_id", org.OrgID.String()).
		Str("username", account.Username).
		Msg("Organiser signed up")

	return access.Organiser(accountID, orgID), org, nil
}
