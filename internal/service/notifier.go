package service

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier is the default Notifier: it records notices in the service log.
// The HTTP layer additionally carries the notice back to the front-end, which
// renders the actual toast.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) Success(_ context.Context, userID, message, description string) {
	n.logger.Info().
		Str("user_id", userID).
		Str("message", message).
		Str("description", description).
		Msg("notification")
}

func (n *LogNotifier) Error(_ context.Context, userID, message, description string) {
	n.logger.Warn().
		Str("user_id", userID).
		Str("message", message).
		Str("description", description).
		Msg("notification")
}
