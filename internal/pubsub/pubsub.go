package pubsub

import (
	"context"
)

// Message is the structure passed between backend instances on the bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.messages.new").
	Topic string
	// UserID identifies the user who initiated the message, when known.
	UserID string
	// Payload contains the raw event data (JSON).
	Payload []byte
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
// A subscription is established exactly once per process at startup; the
// handler then runs for every message received on the topic until the
// context is canceled.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
