package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations are tenants; each one is owned by a single organiser account.
type OrganizationStore interface {
	// CreateWithOwner creates the organiser account and its organization as one unit.
	// Returns ErrAccountAlreadyExists if the username is taken.
	CreateWithOwner(ctx context.Context, owner *models.Account, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByOwner retrieves the organization owned by an organiser account.
	// Returns ErrOrganizationNotFound if the account owns no organization.
	GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Update(ctx context.Context, org *models.Organization) error
}
