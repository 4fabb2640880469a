package sentinel

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSentinel only logs requests. It is used when no sentinel transport is
// configured, for example in local development.
type LogSentinel struct {
	logger zerolog.Logger
}

// NewLogSentinel creates a LogSentinel.
func NewLogSentinel(logger zerolog.Logger) *LogSentinel {
	return &LogSentinel{logger: logger.With().Str("component", "LogSentinel").Logger()}
}

// SendAndForget logs the request.
func (s *LogSentinel) SendAndForget(_ context.Context, routingKey string, msg Message) {
	s.logger.Info().Str("routing_key", routingKey).Str("message_type", msg.MessageType()).Interface("message", msg).Msg("Sentinel request (not delivered).")
}
