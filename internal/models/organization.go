package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents an organisation (tenant) in the system.
// Each organization is owned by exactly one organiser account and owns its agents,
// leads and categories.
type Organization struct {
	OrgID          uuid.UUID // UUIDv7
	Name           string
	OwnerAccountID uuid.UUID // UUIDv7, FK to accounts
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
