package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a sales prospect owned by an organization.
type Lead struct {
	LeadID uuid.UUID // UUIDv7
	OrgID  uuid.UUID // set at creation, immutable

	FirstName   string
	LastName    string
	Age         int
	PhoneNumber string
	Email       string
	Description string

	AgentID    *uuid.UUID // nil when unassigned
	CategoryID *uuid.UUID // nil when uncategorised

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAssigned returns true if the lead has an agent.
func (l *Lead) IsAssigned() bool {
	return l.AgentID != nil
}

// Clone returns a deep copy of the lead, including the optional references.
func (l *Lead) Clone() *Lead {
	clone := *l
	if l.AgentID != nil {
		id := *l.AgentID
		clone.AgentID = &id
	}
	if l.CategoryID != nil {
		id := *l.CategoryID
		clone.CategoryID = &id
	}
	return &clone
}
