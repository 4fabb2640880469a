package sentinel_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSentinel_SendAndForget(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := sentinel.NewRedisSentinel(client, &sentinel.RedisConfig{}, zerolog.Nop())
	assert.Equal(t, "sentinel:sentinel.1", s.Channel("sentinel.1"))

	sub := client.Subscribe(ctx, s.Channel("sentinel.1"))
	t.Cleanup(func() { _ = sub.Close() })
	// Wait for the subscription to be confirmed before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	s.SendAndForget(ctx, "sentinel.1", sentinel.GuildUnsubscribeRequest{GuildID: "g7"})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var env struct {
		Type    string                           `json:"type"`
		Payload sentinel.GuildUnsubscribeRequest `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, "GuildUnsubscribeRequest", env.Type)
	assert.Equal(t, "g7", env.Payload.GuildID)

	require.NoError(t, s.Stop(ctx))
}

func TestRedisSentinel_PublishFailureIsNotSurfaced(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	s := sentinel.NewRedisSentinel(client, &sentinel.RedisConfig{PublishTimeout: 500 * time.Millisecond}, zerolog.Nop())

	assert.NotPanics(t, func() {
		s.SendAndForget(ctx, "sentinel.1", sentinel.GuildUnsubscribeRequest{GuildID: "g7"})
	})
	require.NoError(t, s.Stop(ctx), "in-flight publishes should finish even when they fail")
}
