package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a named pipeline stage scoped to one organization.
type Category struct {
	CategoryID uuid.UUID // UUIDv7
	OrgID      uuid.UUID
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
