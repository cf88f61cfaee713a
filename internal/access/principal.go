package access

import (
	"github.com/google/uuid"
)

// Kind tags the principal variant.
type Kind string

const (
	KindOrganiser Kind = "organiser"
	KindAgent     Kind = "agent"
)

// Principal is an authenticated caller. The organization anchor is resolved once at
// authentication and never re-derived from relationships afterwards.
type Principal struct {
	kind      Kind
	accountID uuid.UUID
	orgID     uuid.UUID
	agentID   uuid.UUID // uuid.Nil for organisers
}

// Organiser returns the principal for the owner of an organization.
func Organiser(accountID, orgID uuid.UUID) Principal {
	return Principal{kind: KindOrganiser, accountID: accountID, orgID: orgID}
}

// Agent returns the principal for an agent employed by an organization.
func Agent(accountID, agentID, orgID uuid.UUID) Principal {
	return Principal{kind: KindAgent, accountID: accountID, agentID: agentID, orgID: orgID}
}

func (p Principal) Kind() Kind           { return p.kind }
func (p Principal) AccountID() uuid.UUID { return p.accountID }
func (p Principal) OrgID() uuid.UUID     { return p.orgID }

// AgentID returns the agent ID and true for agent principals.
func (p Principal) AgentID() (uuid.UUID, bool) {
	return p.agentID, p.kind == KindAgent
}

func (p Principal) IsOrganiser() bool { return p.kind == KindOrganiser }
func (p Principal) IsAgent() bool     { return p.kind == KindAgent }

// Valid reports whether the principal was built by one of the constructors with a
// usable organization anchor.
func (p Principal) Valid() bool {
	if p.orgID == uuid.Nil || p.accountID == uuid.Nil {
		return false
	}
	switch p.kind {
	case KindOrganiser:
		return p.agentID == uuid.Nil
	case KindAgent:
		return p.agentID != uuid.Nil
	default:
		return false
	}
}
