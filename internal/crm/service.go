// Package crm implements the lead management operations. Every operation takes
// the calling principal explicitly and applies the access policy before
// touching storage.
package crm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/leadcrm/internal/access"
	"github.com/wolfeidau/leadcrm/internal/auth"
	"github.com/wolfeidau/leadcrm/internal/notify"
	"github.com/wolfeidau/leadcrm/internal/store"
	"github.com/wolfeidau/leadcrm/internal/telemetry"
)

// Options tune the service.
type Options struct {
	// LeadAlertRecipient receives "lead created" notifications. When empty the
	// organiser who created the lead is notified.
	LeadAlertRecipient string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service is the access-scoped CRM engine.
type Service struct {
	stores   store.Stores
	notifier notify.Notifier
	hasher   *auth.PasswordHasher
	opts     Options
}

// NewService creates the engine. A nil notifier discards notifications.
func NewService(stores store.Stores, notifier notify.Notifier, hasher *auth.PasswordHasher, opts Options) *Service {
	if notifier == nil {
		notifier = notify.NotifierFunc(func(context.Context, notify.Message) error { return nil })
	}
	if hasher == nil {
		hasher = auth.NewPasswordHasher(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		stores:   stores,
		notifier: notifier,
		hasher:   hasher,
		opts:     opts,
	}
}

// authorize applies the role table. Invalid principals are rejected as forbidden.
func (s *Service) authorize(ctx context.Context, p access.Principal, op access.Operation) error {
	if access.Allowed(p, op) {
		return nil
	}

	telemetry.GetMetrics().AccessDeniedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("kind", string(p.Kind())),
	))

	log.Debug().
		Str("operation", string(op)).
		Str("kind", string(p.Kind())).
		Str("account_id", p.AccountID().String()).
		Msg("Operation denied by policy")

	return fmt.Errorf("%s: %w", op, ErrForbidden)
}

// notify dispatches a message after a successful commit. Failures are logged
// and counted but never returned.
func (s *Service) notify(ctx context.Context, msg notify.Message) {
	if msg.To == "" {
		log.Debug().Str("kind", string(msg.Kind)).Msg("Notification skipped, no recipient")
		return
	}

	if err := s.notifier.Notify(ctx, msg); err != nil {
		err = errors.Join(ErrNotificationFailed, err)
		telemetry.GetMetrics().NotificationsFailedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", string(msg.Kind)),
		))
		log.Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Str("to", msg.To).
			Msg("Failed to dispatch notification")
	}
}

func (s *Service) now() time.Time {
	return s.opts.Now().UTC()
}

func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}
