package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubjectPrefix is prepended to the message kind to form the subject.
const DefaultSubjectPrefix = "leadcrm.notifications"

// NATSNotifier publishes notifications as JSON to a NATS subject per kind,
// e.g. "leadcrm.notifications.agent_invited". A mailer or other consumer
// subscribes and performs the actual delivery.
type NATSNotifier struct {
	nc     *nats.Conn
	prefix string
	owned  bool
}

// DialNATS connects to the NATS server at url and returns a notifier that
// owns the connection.
func DialNATS(url, prefix string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("leadcrm-notifier"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := NewNATSNotifier(nc, prefix)
	n.owned = true
	return n, nil
}

// NewNATSNotifier wraps an existing connection. The caller keeps ownership.
func NewNATSNotifier(nc *nats.Conn, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{nc: nc, prefix: prefix}
}

// Subject returns the subject messages of the given kind are published on.
func (n *NATSNotifier) Subject(kind Kind) string {
	if kind == "" {
		kind = "generic"
	}
	return n.prefix + "." + string(kind)
}

func (n *NATSNotifier) Notify(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := n.nc.Publish(n.Subject(msg.Kind), data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Close drains the connection if the notifier owns it.
func (n *NATSNotifier) Close() error {
	if !n.owned {
		return nil
	}
	return n.nc.Drain()
}
