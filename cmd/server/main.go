package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/wolfeidau/leadcrm/cmd/server/internal/commands"
	"github.com/wolfeidau/leadcrm/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool             `help:"Enable debug mode." env:"LEADCRM_DEBUG"`
		Version kong.VersionFlag `help:"Print version and exit."`
		Config  kong.ConfigFlag  `help:"Load flag defaults from a TOML file."`

		Serve   commands.ServeCmd   `cmd:"" help:"Start the API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load YAML fixtures"`
	}
)

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("leadcrm-server"),
		kong.Description("Multi-tenant lead management API."),
		kong.Vars{
			"version": version,
		},
		kong.Configuration(config.TOML, "/etc/leadcrm/config.toml", "~/.config/leadcrm/config.toml"),
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
