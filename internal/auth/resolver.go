package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// ErrUnauthenticated is returned when authentication fails.
var ErrUnauthenticated = errors.New("unauthenticated")

// PrincipalResolver turns an account into a principal with its organization anchor.
type PrincipalResolver struct {
	accounts      store.AccountStore
	organizations store.OrganizationStore
	agents        store.AgentStore
}

// NewPrincipalResolver creates a resolver over the identity stores.
func NewPrincipalResolver(stores store.Stores) *PrincipalResolver {
	return &PrincipalResolver{
		accounts:      stores.Accounts,
		organizations: stores.Organizations,
		agents:        stores.Agents,
	}
}

// Resolve loads the account and derives the principal. Accounts that are neither a
// complete organiser nor a complete agent are rejected.
func (r *PrincipalResolver) Resolve(ctx context.Context, accountID uuid.UUID) (access.Principal, error) {
	account, err := r.accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return access.Principal{}, ErrUnauthenticated
		}
		return access.Principal{}, fmt.Errorf("failed to load account: %w", err)
	}

	return r.ResolveAccount(ctx, account)
}

// ResolveAccount derives the principal for an already loaded account.
func (r *PrincipalResolver) ResolveAccount(ctx context.Context, account *models.Account) (access.Principal, error) {
	switch {
	case account.IsOrganiser && !account.IsAgent:
		org, err := r.organizations.GetByOwner(ctx, account.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrOrganizationNotFound) {
				return access.Principal{}, fmt.Errorf("%w: organiser has no organisation", ErrUnauthenticated)
			}
			return access.Principal{}, fmt.Errorf("failed to load organisation: %w", err)
		}
		return access.Organiser(account.AccountID, org.OrgID), nil

	case account.IsAgent && !account.IsOrganiser:
		agent, err := r.agents.GetByAccount(ctx, account.AccountID)
		if err != nil {
			if errors.Is(err, store.ErrAgentNotFound) {
				return access.Principal{}, fmt.Errorf("%w: account has no agent record", ErrUnauthenticated)
			}
			return access.Principal{}, fmt.Errorf("failed to load agent: %w", err)
		}
		return access.Agent(account.AccountID, agent.AgentID, agent.OrgID), nil

	default:
		return access.Principal{}, fmt.Errorf("%w: account has no usable role", ErrUnauthenticated)
	}
}
