// Package sentinel sends fire-and-forget requests to the sentinel that owns a
// guild's gateway subscription.
package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message is a request addressed to a sentinel.
type Message interface {
	MessageType() string
}

// GuildUnsubscribeRequest asks the sentinel to stop forwarding events for a guild.
type GuildUnsubscribeRequest struct {
	GuildID string `json:"guildId"`
}

// MessageType implements Message.
func (GuildUnsubscribeRequest) MessageType() string { return "GuildUnsubscribeRequest" }

// Sentinel delivers messages without waiting for, or reporting, the outcome.
type Sentinel interface {
	SendAndForget(ctx context.Context, routingKey string, msg Message)
}

// envelope is the wire form shared by all transports.
type envelope struct {
	Type       string          `json:"type"`
	RoutingKey string          `json:"routingKey"`
	Payload    json.RawMessage `json:"payload"`
}

func encode(routingKey string, msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", msg.MessageType(), err)
	}
	return json.Marshal(envelope{Type: msg.MessageType(), RoutingKey: routingKey, Payload: payload})
}
