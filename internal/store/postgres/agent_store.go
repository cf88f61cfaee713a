package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

const agentColumns = `agent_id, account_id, org_id, created_at, updated_at`

// AgentStore implements store.AgentStore using PostgreSQL.
type AgentStore struct {
	pool *pgxpool.Pool
}

// NewAgentStore creates a new PostgreSQL-backed agent store.
func NewAgentStore(pool *pgxpool.Pool) *AgentStore {
	return &AgentStore{
		pool: pool,
	}
}

// CreateWithAccount creates the agent's account and the agent record in one transaction.
func (s *AgentStore) CreateWithAccount(ctx context.Context, account *models.Account, agent *models.Agent) error {
	agent.AccountID = account.AccountID

	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertAccount(ctx, tx, account); err != nil {
			return err
		}

		query := `INSERT INTO agents (` + agentColumns + `) VALUES ($1, $2, $3, $4, $5)`

		_, err := tx.Exec(ctx, query,
			agent.AgentID,
			agent.AccountID,
			agent.OrgID,
			agent.CreatedAt,
			agent.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", mapPostgresError(err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("agent_id", agent.AgentID.String()).
		Str("org_id", agent.OrgID.String()).
		Msg("Created agent")

	return nil
}

// Get retrieves an agent by ID within an organization.
func (s *AgentStore) Get(ctx context.Context, orgID, agentID uuid.UUID) (*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE agent_id = $1 AND org_id = $2`
	return s.queryOne(ctx, query, agentID, orgID)
}

// Lookup retrieves an agent by ID regardless of organization.
func (s *AgentStore) Lookup(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE agent_id = $1`
	return s.queryOne(ctx, query, agentID)
}

// GetByAccount retrieves the agent wrapping an account.
func (s *AgentStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE account_id = $1`
	return s.queryOne(ctx, query, accountID)
}

// List returns the agents of an organization ordered by creation time.
func (s *AgentStore) List(ctx context.Context, orgID uuid.UUID) ([]*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE org_id = $1 ORDER BY created_at, agent_id`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", mapPostgresError(err))
	}
	defer rows.Close()

	agents := make([]*models.Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}

	return agents, nil
}

// Delete removes the agent and its account. The leads foreign key clears the
// agent from assigned leads.
func (s *AgentStore) Delete(ctx context.Context, orgID, agentID uuid.UUID) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		var accountID uuid.UUID
		err := tx.QueryRow(ctx,
			`DELETE FROM agents WHERE agent_id = $1 AND org_id = $2 RETURNING account_id`,
			agentID, orgID,
		).Scan(&accountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrAgentNotFound
			}
			return fmt.Errorf("failed to delete agent: %w", mapPostgresError(err))
		}

		if _, err := tx.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1`, accountID); err != nil {
			return fmt.Errorf("failed to delete agent account: %w", mapPostgresError(err))
		}

		log.Debug().
			Str("agent_id", agentID.String()).
			Str("account_id", accountID.String()).
			Msg("Deleted agent")

		return nil
	})
}

func (s *AgentStore) queryOne(ctx context.Context, query string, args ...any) (*models.Agent, error) {
	agent, err := scanAgent(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", mapPostgresError(err))
	}
	return agent, nil
}

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var agent models.Agent
	if err := row.Scan(
		&agent.AgentID,
		&agent.AccountID,
		&agent.OrgID,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}
