package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogNotifier writes notifications to the log instead of delivering them.
// It is the default for development.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a notifier writing to the global logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.Logger}
}

// NewLogNotifierWithLogger returns a notifier writing to the given logger.
func NewLogNotifierWithLogger(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	n.logger.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("Notification")

	return nil
}
