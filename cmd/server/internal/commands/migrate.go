package commands

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/logger"
	postgresstore "github.com/wolfeidau/leadcrm/internal/store/postgres"
)

// MigrateCmd applies the embedded schema migrations and exits.
type MigrateCmd struct {
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	zlog.Logger = logger.Setup(globals.Debug)

	if err := c.Postgres.Validate(); err != nil {
		return err
	}

	db, err := postgresstore.Open(ctx, c.Postgres.config(true))
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	defer db.Close()

	zlog.Info().Msg("Database migrations completed")
	return nil
}
