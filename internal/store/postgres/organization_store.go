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

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// CreateWithOwner creates the owner account and the organization in one transaction.
func (s *OrganizationStore) CreateWithOwner(ctx context.Context, owner *models.Account, org *models.Organization) error {
	org.OwnerAccountID = owner.AccountID

	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertAccount(ctx, tx, owner); err != nil {
			return err
		}

		query := `
			INSERT INTO organizations (
				org_id, name, owner_account_id, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5
			)
		`

		_, err := tx.Exec(ctx, query,
			org.OrgID,
			org.Name,
			org.OwnerAccountID,
			org.CreatedAt,
			org.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrOrganizationAlreadyExists
			}
			return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT org_id, name, owner_account_id, created_at, updated_at
		FROM organizations
		WHERE org_id = $1
	`

	return s.queryOne(ctx, query, orgID)
}

// GetByOwner retrieves the organization owned by an organiser account.
func (s *OrganizationStore) GetByOwner(ctx context.Context, ownerAccountID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT org_id, name, owner_account_id, created_at, updated_at
		FROM organizations
		WHERE owner_account_id = $1
	`

	return s.queryOne(ctx, query, ownerAccountID)
}

// Update updates an existing organization. The owner is never changed.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, updated_at = now()
		WHERE org_id = $1
		RETURNING owner_account_id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query, org.OrgID, org.Name).Scan(
		&org.OwnerAccountID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	log.Debug().Str("org_id", org.OrgID.String()).Msg("Updated organization")

	return nil
}

func (s *OrganizationStore) queryOne(ctx context.Context, query string, arg uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&org.OrgID,
		&org.Name,
		&org.OwnerAccountID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return &org, nil
}
