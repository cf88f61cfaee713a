package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent links an agent account to the organization employing it.
type Agent struct {
	AgentID   uuid.UUID // UUIDv7
	AccountID uuid.UUID // UUIDv7, unique, FK to accounts
	OrgID     uuid.UUID // UUIDv7, FK to organizations
	CreatedAt time.Time
	UpdatedAt time.Time
}
