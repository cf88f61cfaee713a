package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// Sentinel errors for lead store operations
var (
	ErrLeadNotFound = errors.New("lead not found")
)

// LeadFilter restricts lead reads and writes. OrgID is mandatory; every other field
// narrows the set further.
type LeadFilter struct {
	OrgID uuid.UUID

	// Assigned filters on the presence of an agent (nil = either).
	Assigned *bool

	// AgentID restricts to leads assigned to one agent.
	AgentID *uuid.UUID

	// Categorised filters on the presence of a category (nil = either).
	Categorised *bool

	// CategoryID restricts to leads in one category.
	CategoryID *uuid.UUID
}

// Matches reports whether a lead satisfies the filter.
func (f LeadFilter) Matches(lead *models.Lead) bool {
	if f.OrgID == uuid.Nil || lead.OrgID != f.OrgID {
		return false
	}
	if f.Assigned != nil && lead.IsAssigned() != *f.Assigned {
		return false
	}
	if f.AgentID != nil && (lead.AgentID == nil || *lead.AgentID != *f.AgentID) {
		return false
	}
	if f.Categorised != nil && (lead.CategoryID != nil) != *f.Categorised {
		return false
	}
	if f.CategoryID != nil && (lead.CategoryID == nil || *lead.CategoryID != *f.CategoryID) {
		return false
	}
	return true
}

// LeadStore manages leads. Reads and writes of existing leads take a LeadFilter and
// behave as if leads outside the filter do not exist.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) error

	// Get retrieves a lead matching the filter.
	// Returns ErrLeadNotFound if the lead doesn't exist or doesn't match.
	Get(ctx context.Context, filter LeadFilter, leadID uuid.UUID) (*models.Lead, error)

	// Update replaces the mutable fields of a lead matching the filter.
	// The organization of a lead is never changed.
	Update(ctx context.Context, filter LeadFilter, lead *models.Lead) error

	Delete(ctx context.Context, filter LeadFilter, leadID uuid.UUID) error

	// List returns leads matching the filter ordered by creation time.
	List(ctx context.Context, filter LeadFilter) ([]*models.Lead, error)

	Count(ctx context.Context, filter LeadFilter) (int, error)
}
