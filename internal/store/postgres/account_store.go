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

const accountColumns = `account_id, username, email, first_name, last_name, password_hash,
		is_organiser, is_agent, created_at, updated_at`

// AccountStore implements store.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new PostgreSQL-backed account store.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{
		pool: pool,
	}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`

	account, err := scanAccount(s.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", mapPostgresError(err))
	}

	return account, nil
}

// GetByUsername retrieves an account by username (case-insensitive).
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(username) = lower($1)`

	account, err := scanAccount(s.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by username: %w", mapPostgresError(err))
	}

	return account, nil
}

// Update updates an existing account.
func (s *AccountStore) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET username = $2,
		    email = $3,
		    first_name = $4,
		    last_name = $5,
		    password_hash = $6,
		    is_organiser = $7,
		    is_agent = $8,
		    updated_at = now()
		WHERE account_id = $1
		RETURNING created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query,
		account.AccountID,
		account.Username,
		account.Email,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.IsOrganiser,
		account.IsAgent,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			return store.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to update account: %w", mapPostgresError(err))
	}

	log.Debug().Str("account_id", account.AccountID.String()).Msg("Updated account")

	return nil
}

// insertAccount creates an account inside a transaction.
func insertAccount(ctx context.Context, tx pgx.Tx, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		account.AccountID,
		account.Username,
		account.Email,
		account.FirstName,
		account.LastName,
		account.PasswordHash,
		account.IsOrganiser,
		account.IsAgent,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", mapPostgresError(err))
	}

	return nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.AccountID,
		&account.Username,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.PasswordHash,
		&account.IsOrganiser,
		&account.IsAgent,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
