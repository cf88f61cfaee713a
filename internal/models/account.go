package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a login-capable identity. An account is either an organiser (owning an
// organization) or an agent (wrapped by exactly one Agent record).
type Account struct {
	AccountID uuid.UUID // UUIDv7
	Username  string    // unique
	Email     string
	FirstName string
	LastName  string

	// bcrypt hash, never exposed outside the auth package
	PasswordHash string

	// Roles
	IsOrganiser bool
	IsAgent     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the full name, falling back to the username.
func (a *Account) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.Username
	}
}
