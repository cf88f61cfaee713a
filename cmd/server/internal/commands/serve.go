package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/crm"
	crmhttp "github.com/wolfeidau/leadcrm/internal/http"
	"github.com/wolfeidau/leadcrm/internal/logger"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/seed"
	"github.com/wolfeidau/leadcrm/internal/server"
	"github.com/wolfeidau/leadcrm/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"LEADCRM_LISTEN"`
	Cert   string `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"LEADCRM_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"LEADCRM_TLS_KEY"`

	ShutdownTimeout time.Duration `help:"graceful shutdown timeout" default:"15s" env:"LEADCRM_SHUTDOWN_TIMEOUT"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"LEADCRM_CORS_ORIGINS"`
	TrustProxy  bool     `help:"trust X-Forwarded-For and X-Real-IP from a fronting proxy" default:"false" env:"LEADCRM_TRUST_PROXY"`

	// Authentication
	SigningKeyFile string        `help:"PEM encoded ECDSA P-256 key for signing tokens, ephemeral when empty" env:"LEADCRM_SIGNING_KEY_FILE"`
	TokenTTL       time.Duration `help:"access token lifetime" default:"24h" env:"LEADCRM_TOKEN_TTL"`
	BcryptCost     int           `help:"bcrypt cost for password hashes" default:"10" env:"LEADCRM_BCRYPT_COST"`

	LeadAlertRecipient string `help:"address notified of new leads, the organiser's email when empty" env:"LEADCRM_LEAD_ALERT_RECIPIENT"`
	SeedFile           string `help:"YAML fixtures applied on startup" type:"existingfile" env:"LEADCRM_SEED_FILE"`

	// Telemetry
	Tracing          bool    `help:"enable tracing and metrics export" default:"false" env:"LEADCRM_TRACING"`
	TraceSampleRatio float64 `help:"fraction of traces sampled" default:"1" env:"LEADCRM_TRACE_SAMPLE_RATIO"`

	Store  StoreFlags  `embed:""`
	Notify NotifyFlags `embed:"" prefix:"notify-"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Options{
			ServiceName: "leadcrm-server",
			Version:     globals.Version,
			SampleRatio: c.TraceSampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	transport, closeTransport, err := c.Notify.transport()
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}
	defer func() {
		if err := closeTransport(); err != nil {
			log.Error().Err(err).Msg("Failed to close notifier")
		}
	}()

	dispatcher := notify.NewDispatcher(transport, c.Notify.dispatcherConfig())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
		defer cancel()
		if err := dispatcher.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("Failed to drain notifications")
		}
	}()

	issuer, err := c.tokenIssuer()
	if err != nil {
		return err
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	svc := crm.NewService(stores, dispatcher, hasher, crm.Options{LeadAlertRecipient: c.LeadAlertRecipient})

	if c.SeedFile != "" {
		fixtures, err := seed.LoadFile(c.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, svc, fixtures); err != nil {
			return fmt.Errorf("failed to apply fixtures: %w", err)
		}
	}

	api := server.NewServer(
		svc,
		auth.NewAuthenticator(stores, hasher, issuer),
		auth.Middleware(issuer, auth.NewPrincipalResolver(stores)),
	)

	handler, err := c.handler(log, api.Handler())
	if err != nil {
		return err
	}

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Msg("Starting HTTP server")
		if c.Cert != "" {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// handler wraps the API with the outer middleware. Client IP resolution runs
// first so the request logger sees it.
func (c *ServeCmd) handler(log zerolog.Logger, api http.Handler) (http.Handler, error) {
	protection := csrf.New()
	for _, origin := range c.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("invalid CORS origin %q: %w", origin, err)
		}
	}

	handler := withCORS(c.CORSOrigins, protection.Handler(api))
	handler = logger.RequestLogger(log)(handler)
	handler = crmhttp.ClientIPMiddleware(c.TrustProxy)(handler)

	if c.Tracing {
		handler = otelhttp.NewHandler(handler, "leadcrm")
	}

	return handler, nil
}

func (c *ServeCmd) tokenIssuer() (*auth.TokenIssuer, error) {
	if c.SigningKeyFile == "" {
		zlog.Warn().Msg("No signing key configured, tokens will not survive a restart")
		return auth.NewEphemeralTokenIssuer(auth.DefaultIssuer, c.TokenTTL)
	}

	keyPEM, err := os.ReadFile(c.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	return auth.NewTokenIssuer(keyPEM, auth.DefaultIssuer, c.TokenTTL)
}

// withCORS adds CORS support for browser clients of the JSON API.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return middleware.Handler(h)
}
