package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/leadcrm/internal/telemetry"
)

// DispatcherConfig controls queueing and retry behaviour.
type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// AttemptTimeout bounds a single delivery attempt.
	AttemptTimeout time.Duration
}

// ApplyDefaults fills zero values with defaults.
func (c *DispatcherConfig) ApplyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.MaxTries == 0 {
		c.MaxTries = 5
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 10 * time.Second
	}
}

// Dispatcher queues messages and delivers them through the wrapped notifier
// on background workers, retrying with exponential backoff. Notify never
// blocks on delivery.
type Dispatcher struct {
	next Notifier
	cfg  DispatcherConfig

	mu     sync.RWMutex
	closed bool
	queue  chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers. Call Stop to drain and release them.
func NewDispatcher(next Notifier, cfg DispatcherConfig) *Dispatcher {
	cfg.ApplyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		next:   next,
		cfg:    cfg,
		queue:  make(chan Message, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	log.Debug().
		Int("workers", cfg.Workers).
		Int("queue_size", cfg.QueueSize).
		Uint("max_tries", cfg.MaxTries).
		Msg("Notification dispatcher started")

	return d
}

// Notify enqueues msg for delivery. It fails fast when the queue is full or
// the dispatcher has been stopped.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	metrics := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("kind", string(msg.Kind)))

	if d.closed {
		metrics.NotificationsDroppedTotal.Add(ctx, 1, attrs)
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- msg:
		metrics.NotificationQueueDepth.Add(ctx, 1)
		return nil
	default:
		metrics.NotificationsDroppedTotal.Add(ctx, 1, attrs)
		return ErrQueueFull
	}
}

// Stop stops accepting messages and waits for queued messages to be
// delivered. If ctx expires first, in-flight retries are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		log.Debug().Msg("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("notification dispatcher stop: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for msg := range d.queue {
		telemetry.GetMetrics().NotificationQueueDepth.Add(d.ctx, -1)
		d.deliver(id, msg)
	}
}

func (d *Dispatcher) deliver(worker int, msg Message) {
	metrics := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("kind", string(msg.Kind)))
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.InitialInterval
	b.MaxInterval = d.cfg.MaxInterval

	attempt := 0
	_, err := backoff.Retry(d.ctx, func() (struct{}, error) {
		attempt++
		ctx, cancel := context.WithTimeout(d.ctx, d.cfg.AttemptTimeout)
		defer cancel()

		err := d.next.Notify(ctx, msg)
		if errors.Is(err, ErrNoRecipient) || errors.Is(err, ErrNotifierMisconfig) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(d.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug().
				Err(err).
				Int("worker", worker).
				Str("kind", string(msg.Kind)).
				Dur("retry_in", next).
				Msg("Notification attempt failed, retrying")
		}),
	)

	metrics.NotificationDuration.Record(d.ctx, float64(time.Since(start).Milliseconds()), attrs)

	if err != nil {
		metrics.NotificationsFailedTotal.Add(d.ctx, 1, attrs)
		log.Error().
			Err(err).
			Str("kind", string(msg.Kind)).
			Str("to", msg.To).
			Int("attempts", attempt).
			Msg("Notification delivery failed")
		return
	}

	metrics.NotificationsSentTotal.Add(d.ctx, 1, attrs)
	log.Debug().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Int("attempts", attempt).
		Msg("Notification delivered")
}
