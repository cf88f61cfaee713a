package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/leadcrm/internal/store"
)

// Config holds the settings for the PostgreSQL backed stores.
type Config struct {
	Pool PoolConfig

	// AutoMigrate applies pending migrations when the database is opened.
	AutoMigrate bool

	// MonitorInterval is how often pool statistics are logged.
	// Default: 30 seconds
	MonitorInterval time.Duration
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	c.Pool.ApplyDefaults()
	if c.MonitorInterval == 0 {
		c.MonitorInterval = 30 * time.Second
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return c.Pool.Validate()
}

// DB owns the connection pool shared by all PostgreSQL stores.
type DB struct {
	pool *pgxpool.Pool
	cfg  Config

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Open connects to PostgreSQL, optionally runs migrations and starts pool
// monitoring. Call Close to release the pool.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := NewPool(ctx, &cfg.Pool)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("database", pool.Config().ConnConfig.Database).
		Str("host", pool.Config().ConnConfig.Host).
		Int32("max_conns", cfg.Pool.MaxConns).
		Msg("Connected to PostgreSQL")

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db := &DB{
		pool:   pool,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.monitorConnectionPool()
	}()

	return db, nil
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Stores returns the full set of PostgreSQL backed stores.
func (db *DB) Stores() store.Stores {
	return NewStores(db.pool)
}

// Close stops background tasks and closes the pool.
func (db *DB) Close() {
	db.once.Do(func() {
		log.Info().Msg("Closing PostgreSQL stores")
		close(db.stopCh)
		db.wg.Wait()
		db.pool.Close()
	})
}

// NewStores creates the PostgreSQL stores over a shared pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(pool),
		Accounts:      NewAccountStore(pool),
		Agents:        NewAgentStore(pool),
		Leads:         NewLeadStore(pool),
		Categories:    NewCategoryStore(pool),
	}
}

// monitorConnectionPool logs connection pool statistics periodically.
func (db *DB) monitorConnectionPool() {
	ticker := time.NewTicker(db.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := db.pool.Stat()
			log.Debug().
				Int32("total_conns", stats.TotalConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int64("acquire_count", stats.AcquireCount()).
				Int64("acquire_duration_ns", stats.AcquireDuration().Nanoseconds()).
				Msg("Connection pool stats")
		case <-db.stopCh:
			return
		}
	}
}

// inTx runs fn in a transaction, committing when it returns nil.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPostgresError(err))
	}

	return nil
}
