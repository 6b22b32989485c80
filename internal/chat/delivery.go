package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nfrund/courier/internal/pubsub"
	"github.com/nfrund/courier/internal/registry"
)

// Delivery fans published chat messages out to the recipient's live
// connections in this instance's local registry. Every instance runs one
// Delivery; the publishing instance receives its own publish through the
// same subscription, keeping a single delivery code path.
type Delivery struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewDelivery creates a Delivery over the given registry.
func NewDelivery(reg *registry.Registry) *Delivery {
	return &Delivery{
		registry: reg,
		logger:   slog.Default().With("component", "delivery"),
	}
}

// Start establishes the process-wide subscription. It must be called
// exactly once at startup; subscribing per message would accumulate
// duplicate handlers over the life of the process.
func (d *Delivery) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return sub.Subscribe(ctx, TopicMessages, d.handle)
}

// handle pushes one published message to each of the recipient's local
// connections. A recipient with no live local connection gets nothing —
// delivery is at-most-once, best-effort; the durable store covers later
// history fetches.
func (d *Delivery) handle(ctx context.Context, msg pubsub.Message) error {
	var frame DeliveryFrame
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		d.logger.Warn("Dropping malformed bus payload", "error", err)
		return nil
	}

	conns := d.registry.ForUser(frame.Recipient)
	for _, c := range conns {
		c.Send(msg.Payload)
	}

	if len(conns) > 0 {
		d.logger.Debug("Delivered message",
			"messageID", frame.ID,
			"recipient", frame.Recipient,
			"connections", len(conns))
	}
	return nil
}
