package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/store"
	"github.com/wolfeidau/leadcrm/internal/telemetry"
)

const (
	inviteSubject = "You are invited to be an agent!"
	inviteBody    = "Congratulations. You are invited to become an agent. Please come log in to start working."
)

// AgentInput carries the profile of an agent's account.
type AgentInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// AgentDetail is an agent joined with its account profile.
type AgentDetail struct {
	AgentID   uuid.UUID
	AccountID uuid.UUID
	OrgID     uuid.UUID
	Username  string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// DisplayName returns the agent's full name, falling back to the username.
func (d *AgentDetail) DisplayName() string {
	a := models.Account{Username: d.Username, FirstName: d.FirstName, LastName: d.LastName}
	return a.DisplayName()
}

func newAgentDetail(agent *models.Agent, account *models.Account) *AgentDetail {
	return &AgentDetail{
		AgentID:   agent.AgentID,
		AccountID: agent.AccountID,
		OrgID:     agent.OrgID,
		Username:  account.Username,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		CreatedAt: agent.CreatedAt,
	}
}

// CreateAgent creates an agent account in the principal's organization with a
// random credential and sends an invitation. The account and agent record are
// stored together; a failed invitation does not undo them.
func (s *Service) CreateAgent(ctx context.Context, p access.Principal, in AgentInput) (*AgentDetail, error) {
	if err := s.authorize(ctx, p, access.OpCreateAgent); err != nil {
		return nil, err
	}

	in = normalizeAgent(in)
	if err := validateAgent(in); err != nil {
		return nil, err
	}

	credential, err := auth.GenerateCredential()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(credential)
	if err != nil {
		return nil, err
	}

	accountID, err := newID()
	if err != nil {
		return nil, err
	}
	agentID, err := newID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.Account{
		AccountID:    accountID,
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsOrganiser:  false,
		IsAgent:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	agent := &models.Agent{
		AgentID:   agentID,
		AccountID: accountID,
		OrgID:     p.OrgID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stores.Agents.CreateWithAccount(ctx, account, agent); err != nil {
		if errors.Is(err, store.ErrAccountAlreadyExists) {
			return nil, &ValidationError{Fields: map[string]string{"username": "is already taken"}}
		}
		return nil, mapStoreError(err, "create agent")
	}

	telemetry.GetMetrics().AgentsCreatedTotal.Add(ctx, 1)
	log.Info().
		Str("agent_id", agent.AgentID.String()).
		Str("org_id", agent.OrgID.String()).
		Str("username", account.Username).
		Msg("Agent created")

	s.notify(ctx, notify.Message{
		Kind:    notify.KindAgentInvited,
		To:      account.Email,
		Subject: inviteSubject,
		Body:    inviteBody,
	})

	return newAgentDetail(agent, account), nil
}

// ListAgents returns the agents of the principal's organization.
func (s *Service) ListAgents(ctx context.Context, p access.Principal) ([]*AgentDetail, error) {
	if err := s.authorize(ctx, p, access.OpListAgents); err != nil {
		return nil, err
	}

	return s.listAgentDetails(ctx, p.OrgID())
}

// GetAgent returns an agent of the principal's organization.
func (s *Service) GetAgent(ctx context.Context, p access.Principal, agentID uuid.UUID) (*AgentDetail, error) {
	if err := s.authorize(ctx, p, access.OpGetAgent); err != nil {
		return nil, err
	}

	agent, err := s.stores.Agents.Get(ctx, p.OrgID(), agentID)
	if err != nil {
		return nil, mapStoreError(err, "get agent")
	}

	account, err := s.stores.Accounts.Get(ctx, agent.AccountID)
	if err != nil {
		return nil, mapStoreError(err, "get agent account")
	}

	return newAgentDetail(agent, account), nil
}

// UpdateAgent edits the profile of an agent's account.
func (s *Service) UpdateAgent(ctx context.Context, p access.Principal, agentID uuid.UUID, in AgentInput) (*AgentDetail, error) {
	if err := s.authorize(ctx, p, access.OpUpdateAgent); err != nil {
		return nil, err
	}

	agent, err := s.stores.Agents.Get(ctx, p.OrgID(), agentID)
	if err != nil {
		return nil, mapStoreError(err, "update agent")
	}

	in = normalizeAgent(in)
	if err := validateAgent(in); err != nil {
		return nil, err
	}

	account, err := s.stores.Accounts.Get(ctx, agent.AccountID)
	if err != nil {
		return nil, mapStoreError(err, "update agent")
	}

	account.Username = in.Username
	account.Email = in.Email
	account.FirstName = in.FirstName
	account.LastName = in.LastName

	if err := s.stores.Accounts.Update(ctx, account); err != nil {
		if errors.Is(err, store.ErrAccountAlreadyExists) {
			return nil, &ValidationError{Fields: map[string]string{"username": "is already taken"}}
		}
		return nil, mapStoreError(err, "update agent")
	}

	log.Debug().Str("agent_id", agent.AgentID.String()).Msg("Agent updated")

	return newAgentDetail(agent, account), nil
}

// DeleteAgent removes an agent and its account. The agent's leads return to
// the unassigned bucket.
func (s *Service) DeleteAgent(ctx context.Context, p access.Principal, agentID uuid.UUID) error {
	if err := s.authorize(ctx, p, access.OpDeleteAgent); err != nil {
		return err
	}

	if err := s.stores.Agents.Delete(ctx, p.OrgID(), agentID); err != nil {
		return mapStoreError(err, "delete agent")
	}

	telemetry.GetMetrics().AgentsDeletedTotal.Add(ctx, 1)
	log.Info().Str("agent_id", agentID.String()).Msg("Agent deleted")

	return nil
}

func (s *Service) listAgentDetails(ctx context.Context, orgID uuid.UUID) ([]*AgentDetail, error) {
	agents, err := s.stores.Agents.List(ctx, orgID)
	if err != nil {
		return nil, mapStoreError(err, "list agents")
	}

	details := make([]*AgentDetail, 0, len(agents))
	for _, agent := range agents {
		account, err := s.stores.Accounts.Get(ctx, agent.AccountID)
		if err != nil {
			return nil, fmt.Errorf("load account for agent %s: %w", agent.AgentID, err)
		}
		details = append(details, newAgentDetail(agent, account))
	}

	return details, nil
}

func normalizeAgent(in AgentInput) AgentInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	return in
}

func validateAgent(in AgentInput) error {
	errs := fieldErrors{}
	validateUsername(errs, in.Username)
	validateEmail(errs, "email", in.Email, true)
	validateAccountName(errs, "first_name", in.FirstName)
	validateAccountName(errs, "last_name", in.LastName)
	return errs.err()
}
