package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

const leadColumns = `lead_id, org_id, first_name, last_name, age, phone_number, email,
		description, agent_id, category_id, created_at, updated_at`

// LeadStore implements store.LeadStore using PostgreSQL.
type LeadStore struct {
	pool *pgxpool.Pool
}

// NewLeadStore creates a new PostgreSQL-backed lead store.
func NewLeadStore(pool *pgxpool.Pool) *LeadStore {
	return &LeadStore{
		pool: pool,
	}
}

func (s *LeadStore) Create(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		lead.LeadID,
		lead.OrgID,
		lead.FirstName,
		lead.LastName,
		lead.Age,
		lead.PhoneNumber,
		lead.Email,
		lead.Description,
		lead.AgentID,
		lead.CategoryID,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("lead_id", lead.LeadID.String()).
		Str("org_id", lead.OrgID.String()).
		Msg("Created lead")

	return nil
}

func (s *LeadStore) Get(ctx context.Context, filter store.LeadFilter, leadID uuid.UUID) (*models.Lead, error) {
	where, args := leadWhere(filter, leadID)
	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + where

	lead, err := scanLead(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", mapPostgresError(err))
	}

	return lead, nil
}

// Update replaces the mutable fields of a lead matching the filter. The
// organization and creation time are kept.
func (s *LeadStore) Update(ctx context.Context, filter store.LeadFilter, lead *models.Lead) error {
	where, args := leadWhere(filter, lead.LeadID)
	args = append(args,
		lead.FirstName,
		lead.LastName,
		lead.Age,
		lead.PhoneNumber,
		lead.Email,
		lead.Description,
		lead.AgentID,
		lead.CategoryID,
	)
	n := len(args)

	query := fmt.Sprintf(`
		UPDATE leads
		SET first_name = $%d,
		    last_name = $%d,
		    age = $%d,
		    phone_number = $%d,
		    email = $%d,
		    description = $%d,
		    agent_id = $%d,
		    category_id = $%d,
		    updated_at = now()
		WHERE %s
		RETURNING org_id, created_at, updated_at
	`, n-7, n-6, n-5, n-4, n-3, n-2, n-1, n, where)

	err := s.pool.QueryRow(ctx, query, args...).Scan(&lead.OrgID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrLeadNotFound
		}
		return fmt.Errorf("failed to update lead: %w", mapPostgresError(err))
	}

	return nil
}

func (s *LeadStore) Delete(ctx context.Context, filter store.LeadFilter, leadID uuid.UUID) error {
	where, args := leadWhere(filter, leadID)

	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE `+where, args...)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrLeadNotFound
	}

	return nil
}

// List returns leads matching the filter ordered by creation time.
func (s *LeadStore) List(ctx context.Context, filter store.LeadFilter) ([]*models.Lead, error) {
	where, args := leadWhere(filter, uuid.Nil)
	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + where + ` ORDER BY created_at, lead_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", mapPostgresError(err))
	}
	defer rows.Close()

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

func (s *LeadStore) Count(ctx context.Context, filter store.LeadFilter) (int, error) {
	where, args := leadWhere(filter, uuid.Nil)

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", mapPostgresError(err))
	}

	return count, nil
}

// leadWhere renders a filter as a WHERE clause. The organization condition is
// always present; a nil organization matches no rows. A non-nil leadID adds a
// primary key condition.
func leadWhere(filter store.LeadFilter, leadID uuid.UUID) (string, []any) {
	conds := []string{"org_id = $1"}
	args := []any{filter.OrgID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OrgID == uuid.Nil {
		conds = append(conds, "FALSE")
	}
	if leadID != uuid.Nil {
		add("lead_id = $%d", leadID)
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			conds = append(conds, "agent_id IS NOT NULL")
		} else {
			conds = append(conds, "agent_id IS NULL")
		}
	}
	if filter.AgentID != nil {
		add("agent_id = $%d", *filter.AgentID)
	}
	if filter.Categorised != nil {
		if *filter.Categorised {
			conds = append(conds, "category_id IS NOT NULL")
		} else {
			conds = append(conds, "category_id IS NULL")
		}
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}

	return strings.Join(conds, " AND "), args
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var lead models.Lead
	if err := row.Scan(
		&lead.LeadID,
		&lead.OrgID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Age,
		&lead.PhoneNumber,
		&lead.Email,
		&lead.Description,
		&lead.AgentID,
		&lead.CategoryID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
