package sentinel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
)

// Pub/Sub attribute names set on every request.
const (
	AttrRoutingKey  = "routing_key"
	AttrMessageType = "message_type"
)

// PubsubConfig holds configuration for the Pub/Sub sentinel transport.
type PubsubConfig struct {
	TopicID string
	// ResultTimeout bounds the background wait for the publish result.
	ResultTimeout time.Duration
}

// NewPubsubConfigDefaults provides a config with sensible defaults.
func NewPubsubConfigDefaults(topicID string) *PubsubConfig {
	return &PubsubConfig{
		TopicID:       topicID,
		ResultTimeout: 30 * time.Second,
	}
}

// PubsubSentinel publishes sentinel requests to a single Pub/Sub topic. The
// routing key travels as an attribute so each sentinel can filter its own
// subscription on it.
type PubsubSentinel struct {
	topic         *pubsub.Topic
	resultTimeout time.Duration
	logger        zerolog.Logger
	wg            sync.WaitGroup
}

// NewPubsubSentinel creates a publisher for an existing topic.
func NewPubsubSentinel(ctx context.Context, cfg *PubsubConfig, client *pubsub.Client, logger zerolog.Logger) (*PubsubSentinel, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client cannot be nil")
	}
	topic := client.Topic(cfg.TopicID)

	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for topic %s: %w", cfg.TopicID, err)
	}
	if !exists {
		return nil, fmt.Errorf("pubsub topic %s does not exist", cfg.TopicID)
	}

	resultTimeout := cfg.ResultTimeout
	if resultTimeout <= 0 {
		resultTimeout = 30 * time.Second
	}
	return &PubsubSentinel{
		topic:         topic,
		resultTimeout: resultTimeout,
		logger:        logger.With().Str("component", "PubsubSentinel").Str("topic_id", cfg.TopicID).Logger(),
	}, nil
}

// SendAndForget queues the message and returns immediately. The publish result
// is only logged.
func (s *PubsubSentinel) SendAndForget(ctx context.Context, routingKey string, msg Message) {
	data, err := encode(routingKey, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("routing_key", routingKey).Msg("Failed to encode sentinel request.")
		return
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			AttrRoutingKey:  routingKey,
			AttrMessageType: msg.MessageType(),
		},
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// A fresh context so the wait outlives a short-lived caller context.
		getCtx, cancel := context.WithTimeout(context.Background(), s.resultTimeout)
		defer cancel()

		msgID, err := result.Get(getCtx)
		if err != nil {
			s.logger.Warn().Err(err).Str("routing_key", routingKey).Str("message_type", msg.MessageType()).Msg("Failed to publish sentinel request.")
			return
		}
		s.logger.Debug().Str("published_msg_id", msgID).Str("routing_key", routingKey).Msg("Sentinel request sent.")
	}()
}

// Stop flushes pending messages, respecting the context's timeout.
func (s *PubsubSentinel) Stop(ctx context.Context) error {
	if s.topic == nil {
		return nil
	}

	// topic.Stop() is blocking, so we wrap it to respect the context timeout.
	stopDone := make(chan struct{})
	go func() {
		s.topic.Stop()
		s.wg.Wait()
		close(stopDone)
	}()

	select {
	case <-stopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
