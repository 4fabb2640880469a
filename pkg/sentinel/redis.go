package sentinel

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultChannelPrefix = "sentinel:"

// RedisConfig holds configuration for the Redis sentinel transport.
type RedisConfig struct {
	ChannelPrefix  string
	PublishTimeout time.Duration
}

// RedisSentinel publishes each request on the Redis channel named by the
// routing key.
type RedisSentinel struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewRedisSentinel creates a RedisSentinel using an existing client, whose
// lifecycle is managed by the caller.
func NewRedisSentinel(client *redis.Client, cfg *RedisConfig, logger zerolog.Logger) *RedisSentinel {
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RedisSentinel{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
		logger:  logger.With().Str("component", "RedisSentinel").Logger(),
	}
}

// Channel returns the channel a routing key maps to.
func (s *RedisSentinel) Channel(routingKey string) string {
	return s.prefix + routingKey
}

// SendAndForget publishes in the background and returns immediately.
func (s *RedisSentinel) SendAndForget(ctx context.Context, routingKey string, msg Message) {
	data, err := encode(routingKey, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("routing_key", routingKey).Msg("Failed to encode sentinel request.")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.client.Publish(pubCtx, s.Channel(routingKey), data).Err(); err != nil {
			s.logger.Warn().Err(err).Str("routing_key", routingKey).Str("message_type", msg.MessageType()).Msg("Failed to publish sentinel request.")
			return
		}
		s.logger.Debug().Str("routing_key", routingKey).Msg("Sentinel request sent.")
	}()
}

// Stop waits for in-flight publishes, respecting the context's timeout.
func (s *RedisSentinel) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
