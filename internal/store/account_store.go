package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// Sentinel errors for account store operations
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
)

// AccountStore manages login-capable accounts.
// Accounts are only ever created together with an organization or an agent record,
// see OrganizationStore.CreateWithOwner and AgentStore.CreateWithAccount.
type AccountStore interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error)

	// GetByUsername retrieves an account by its unique username.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Update updates profile fields and roles of an existing account.
	// Returns ErrAccountAlreadyExists if the new username is taken.
	Update(ctx context.Context, account *models.Account) error
}
