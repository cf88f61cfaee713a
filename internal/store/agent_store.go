package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/leadcrm/internal/models"
)

// Sentinel errors for agent store operations
var (
	ErrAgentNotFound      = errors.New("agent not found")
	ErrAgentAlreadyExists = errors.New("agent already exists")
)

// AgentStore manages agent records.
type AgentStore interface {
	// CreateWithAccount creates the agent's account and the agent record atomically.
	// Either both are stored or neither is.
	CreateWithAccount(ctx context.Context, account *models.Account, agent *models.Agent) error

	// Get retrieves an agent by ID within an organization.
	// Returns ErrAgentNotFound if the agent doesn't exist or belongs to another organization.
	Get(ctx context.Context, orgID, agentID uuid.UUID) (*models.Agent, error)

	// Lookup retrieves an agent by ID in any organization. It exists for integrity
	// checks only; access decisions must use Get.
	Lookup(ctx context.Context, agentID uuid.UUID) (*models.Agent, error)

	// GetByAccount retrieves the agent record wrapping an account.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.Agent, error)

	// List returns all agents of an organization.
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Agent, error)

	// Delete removes an agent within an organization together with its account.
	// Leads assigned to the agent become unassigned.
	Delete(ctx context.Context, orgID, agentID uuid.UUID) error
}
