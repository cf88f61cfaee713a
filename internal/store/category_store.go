package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// Sentinel errors for category store operations
var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryStore manages pipeline categories. Every read and write is scoped by
// organization.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	Get(ctx context.Context, orgID, categoryID uuid.UUID) (*models.Category, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error

	// Delete removes a category; leads referencing it become uncategorised.
	Delete(ctx context.Context, orgID, categoryID uuid.UUID) error
}
