// Package chat implements the message pipeline: an inbound frame from an
// identified connection is validated, persisted, published to the bus, and
// fanned out to the recipient's live local connections on every instance.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/pubsub"
)

// Pipeline validates, persists, and publishes inbound chat frames. Delivery
// happens on the subscribing side (see Delivery), uniformly for local and
// remote recipients, so the sender instance takes no shortcut for its own
// users.
type Pipeline struct {
	store     domain.MessageRepository
	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline over the given store and bus publisher.
func NewPipeline(store domain.MessageRepository, publisher pubsub.Publisher) *Pipeline {
	return &Pipeline{
		store:     store,
		publisher: publisher,
		logger:    slog.Default().With("component", "pipeline"),
	}
}

// Handle processes one raw inbound frame. Frames from anonymous
// connections, unparsable payloads, and frames failing validation are
// silently discarded; the connection stays open. Persistence or publish
// failures are logged and contained — they never propagate to the
// connection's read loop.
//
// Per-connection read loops are single-threaded, so messages from one
// sender to one recipient are persisted and published in emission order.
func (p *Pipeline) Handle(ctx context.Context, sender domain.Claim, raw []byte) {
	if sender.Anonymous() {
		p.logger.Debug("Discarding frame from anonymous connection")
		return
	}

	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		p.logger.Debug("Discarding unparsable frame", "userID", sender.UserID, "error", err)
		return
	}
	if !frame.Valid() {
		p.logger.Debug("Discarding invalid frame", "userID", sender.UserID)
		return
	}

	msg, err := p.store.Append(ctx, sender.UserID, frame.Recipient, frame.Text, frame.File)
	if err != nil {
		p.logger.Error("Failed to persist message",
			"sender", sender.UserID,
			"recipient", frame.Recipient,
			"error", err)
		return
	}

	payload, err := json.Marshal(DeliveryFrame{
		ID:        msg.IDString(),
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		Text:      msg.Text,
		File:      msg.File,
	})
	if err != nil {
		p.logger.Error("Failed to marshal delivery frame", "messageID", msg.IDString(), "error", err)
		return
	}

	// Bus failures are transient: the message is already durable and will
	// surface through a history fetch even if this push is lost.
	if err := p.publisher.Publish(ctx, pubsub.Message{
		Topic:   TopicMessages,
		UserID:  sender.UserID,
		Payload: payload,
	}); err != nil {
		p.logger.Error("Failed to publish message", "messageID", msg.IDString(), "error", err)
	}
}
