package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/leadcrm/internal/models"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// CategoryStore implements store.CategoryStore using PostgreSQL.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore creates a new PostgreSQL-backed category store.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{
		pool: pool,
	}
}

func (s *CategoryStore) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (category_id, org_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		category.CategoryID,
		category.OrgID,
		category.Name,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", mapPostgresError(err))
	}

	return nil
}

func (s *CategoryStore) Get(ctx context.Context, orgID, categoryID uuid.UUID) (*models.Category, error) {
	query := `
		SELECT category_id, org_id, name, created_at, updated_at
		FROM categories
		WHERE category_id = $1 AND org_id = $2
	`

	var category models.Category
	err := s.pool.QueryRow(ctx, query, categoryID, orgID).Scan(
		&category.CategoryID,
		&category.OrgID,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", mapPostgresError(err))
	}

	return &category, nil
}

// List returns the categories of an organization ordered by name.
func (s *CategoryStore) List(ctx context.Context, orgID uuid.UUID) ([]*models.Category, error) {
	query := `
		SELECT category_id, org_id, name, created_at, updated_at
		FROM categories
		WHERE org_id = $1
		ORDER BY name, category_id
	`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", mapPostgresError(err))
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.CategoryID,
			&category.OrgID,
			&category.Name,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $3, updated_at = now()
		WHERE category_id = $1 AND org_id = $2
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query, category.CategoryID, category.OrgID, category.Name).Scan(
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update category: %w", mapPostgresError(err))
	}

	return nil
}

// Delete removes a category. The leads foreign key makes its leads uncategorised.
func (s *CategoryStore) Delete(ctx context.Context, orgID, categoryID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM categories WHERE category_id = $1 AND org_id = $2`,
		categoryID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrCategoryNotFound
	}

	return nil
}
