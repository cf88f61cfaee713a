package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/store"
	memorystore "github.com/wolfeidau/leadcrm/internal/store/memory"
	postgresstore "github.com/wolfeidau/leadcrm/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// StoreFlags selects the store. The PostgreSQL flags keep the same names as the
// migrate command's so one config file serves every command.
type StoreFlags struct {
	Type     string        `name:"store-type" help:"store type (memory or postgres)" default:"memory" env:"LEADCRM_STORE_TYPE" enum:"memory,postgres"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

type PostgresFlags struct {
	// Connection Configuration
	ConnString      string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	ApplicationName string `help:"application name reported to PostgreSQL" default:"leadcrm" env:"LEADCRM_POSTGRES_APPLICATION_NAME"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"LEADCRM_POSTGRES_AUTO_MIGRATE"`
}

func (p *PostgresFlags) Validate() error {
	if p.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (p *PostgresFlags) config(autoMigrate bool) postgresstore.Config {
	return postgresstore.Config{
		Pool: postgresstore.PoolConfig{
			ConnString:      p.ConnString,
			ApplicationName: p.ApplicationName,
			MaxConns:        p.MaxConns,
			MinConns:        p.MinConns,
			MaxConnLifetime: p.MaxConnLifetime,
			MaxConnIdleTime: p.MaxConnIdleTime,
		},
		AutoMigrate: autoMigrate,
	}
}

// open returns the selected stores and a function releasing them.
func (s *StoreFlags) open(ctx context.Context) (store.Stores, func(), error) {
	switch s.Type {
	case "postgres":
		if err := s.Postgres.Validate(); err != nil {
			return store.Stores{}, nil, err
		}

		db, err := postgresstore.Open(ctx, s.Postgres.config(s.Postgres.AutoMigrate))
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
		}

		log.Info().Bool("auto_migrate", s.Postgres.AutoMigrate).Msg("Using PostgreSQL stores with shared connection pool")
		return db.Stores(), db.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}

type NotifyFlags struct {
	Type string `help:"notification transport (log, smtp or nats)" default:"log" env:"LEADCRM_NOTIFY_TYPE" enum:"log,smtp,nats"`

	SMTPAddr     string `help:"SMTP server host:port" env:"LEADCRM_SMTP_ADDR"`
	SMTPFrom     string `help:"sender address for notifications" env:"LEADCRM_SMTP_FROM"`
	SMTPUsername string `help:"SMTP username" env:"LEADCRM_SMTP_USERNAME"`
	SMTPPassword string `help:"SMTP password" env:"LEADCRM_SMTP_PASSWORD"`

	NATSURL           string `help:"NATS server URL" default:"nats://127.0.0.1:4222" env:"LEADCRM_NATS_URL"`
	NATSSubjectPrefix string `help:"NATS subject prefix for notifications" default:"leadcrm.notifications" env:"LEADCRM_NATS_SUBJECT_PREFIX"`

	QueueSize int  `help:"notification queue size" default:"256" env:"LEADCRM_NOTIFY_QUEUE_SIZE"`
	Workers   int  `help:"notification delivery workers" default:"2" env:"LEADCRM_NOTIFY_WORKERS"`
	MaxTries  uint `help:"delivery attempts per notification" default:"5" env:"LEADCRM_NOTIFY_MAX_TRIES"`
}

// transport builds the notifier selected by Type and a function closing it.
func (n *NotifyFlags) transport() (notify.Notifier, func() error, error) {
	noop := func() error { return nil }

	switch n.Type {
	case "smtp":
		notifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Addr:     n.SMTPAddr,
			From:     n.SMTPFrom,
			Username: n.SMTPUsername,
			Password: n.SMTPPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return notifier, noop, nil

	case "nats":
		notifier, err := notify.DialNATS(n.NATSURL, n.NATSSubjectPrefix)
		if err != nil {
			return nil, nil, err
		}
		return notifier, notifier.Close, nil

	default:
		return notify.NewLogNotifier(), noop, nil
	}
}

func (n *NotifyFlags) dispatcherConfig() notify.DispatcherConfig {
	return notify.DispatcherConfig{
		QueueSize: n.QueueSize,
		Workers:   n.Workers,
		MaxTries:  n.MaxTries,
	}
}
