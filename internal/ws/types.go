package ws

import (
	"context"
	"encoding/json"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher receives connection lifecycle and inbound events. Calls for a
// single connection are made sequentially from its read loop.
type Dispatcher interface {
	HandleConnect(ctx context.Context, socketID string)
	HandleEvent(ctx context.Context, socketID, event string, payload json.RawMessage)
	HandleDisconnect(ctx context.Context, socketID string)
}
