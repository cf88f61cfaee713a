package commands

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/crm"
	"github.com/wolfeidau/leadcrm/internal/logger"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/seed"
)

// SeedCmd loads YAML fixtures into the configured store. Invitations are
// logged rather than delivered.
type SeedCmd struct {
	File       string     `arg:"" help:"YAML fixtures file" type:"existingfile"`
	BcryptCost int        `help:"bcrypt cost for password hashes" default:"10" env:"LEADCRM_BCRYPT_COST"`
	Store      StoreFlags `embed:""`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	zlog.Logger = logger.Setup(globals.Debug)

	fixtures, err := seed.LoadFile(c.File)
	if err != nil {
		return err
	}

	if c.Store.Type == "memory" {
		zlog.Warn().Msg("Seeding the in-memory store only validates the fixtures")
	}

	stores, closeStores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	svc := crm.NewService(stores, notify.NewLogNotifier(), auth.NewPasswordHasher(c.BcryptCost), crm.Options{})

	sum, err := seed.Apply(ctx, svc, fixtures)
	if err != nil {
		return fmt.Errorf("failed to apply fixtures: %w", err)
	}

	zlog.Info().
		Int("organisations", sum.Organisations).
		Int("leads", sum.Leads).
		Msg("Seed complete")
	return nil
}
