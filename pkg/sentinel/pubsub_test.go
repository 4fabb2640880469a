package sentinel_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/illmade-knight/go-guildsweeper/pkg/sentinel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// setupTestPubsub creates a mock Pub/Sub server and a client connected to it.
func setupTestPubsub(t *testing.T, ctx context.Context, projectID string) *pubsub.Client {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, projectID, option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPubsubSentinel_SendAndForget(t *testing.T) {
	// --- Arrange ---
	testCtx, testCancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(testCancel)

	client := setupTestPubsub(t, testCtx, "test-project")
	topic, err := client.CreateTopic(testCtx, "sentinel-requests")
	require.NoError(t, err)
	sub, err := client.CreateSubscription(testCtx, "sentinel-0", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	s, err := sentinel.NewPubsubSentinel(testCtx, sentinel.NewPubsubConfigDefaults("sentinel-requests"), client, zerolog.Nop())
	require.NoError(t, err)

	// --- Act ---
	s.SendAndForget(testCtx, "sentinel.3", sentinel.GuildUnsubscribeRequest{GuildID: "g1"})

	// --- Assert ---
	var mu sync.Mutex
	var received *pubsub.Message

	receiveCtx, receiveCancel := context.WithCancel(testCtx)
	t.Cleanup(receiveCancel)
	go func() {
		err := sub.Receive(receiveCtx, func(ctx context.Context, msg *pubsub.Message) {
			mu.Lock()
			received = msg
			mu.Unlock()
			msg.Ack()
			receiveCancel()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Subscription receive error: %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received != nil
	}, 5*time.Second, 50*time.Millisecond, "did not receive sentinel request in time")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "sentinel.3", received.Attributes[sentinel.AttrRoutingKey])
	assert.Equal(t, "GuildUnsubscribeRequest", received.Attributes[sentinel.AttrMessageType])

	var env struct {
		Type       string                           `json:"type"`
		RoutingKey string                           `json:"routingKey"`
		Payload    sentinel.GuildUnsubscribeRequest `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(received.Data, &env))
	assert.Equal(t, "g1", env.Payload.GuildID)
	assert.Equal(t, "sentinel.3", env.RoutingKey)

	stopCtx, stopCancel := context.WithTimeout(testCtx, 2*time.Second)
	t.Cleanup(stopCancel)
	require.NoError(t, s.Stop(stopCtx))
}

func TestNewPubsubSentinel_TopicDoesNotExist(t *testing.T) {
	testCtx, testCancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(testCancel)

	client := setupTestPubsub(t, testCtx, "test-project")

	s, err := sentinel.NewPubsubSentinel(testCtx, sentinel.NewPubsubConfigDefaults("missing-topic"), client, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "pubsub topic missing-topic does not exist")
}
