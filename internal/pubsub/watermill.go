package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// metadata key used to carry the originating user through watermill's message.
const metaKeyUserID = "user_id"

// Bridge implements the Publisher and Subscriber interfaces on top of a
// watermill publisher/subscriber pair.
type Bridge struct {
	pub message.Publisher
	sub message.Subscriber
}

// NewBridge initializes a Bridge backed by watermill's in-memory GoChannel,
// which serves single-process deployments and tests.
func NewBridge() *Bridge {
	logger := watermill.NewSlogLogger(slog.Default())
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{},
		logger,
	)

	return &Bridge{pub: goChannel, sub: goChannel}
}

// NewBridgeWithPubSub initializes a Bridge on an arbitrary watermill
// publisher/subscriber pair. This is the seam where a networked transport
// (Redis, NATS, Kafka) plugs in for multi-instance deployments.
func NewBridgeWithPubSub(pub message.Publisher, sub message.Subscriber) *Bridge {
	return &Bridge{pub: pub, sub: sub}
}

// Publish implements the Publisher interface.
func (b *Bridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	if msg.UserID != "" {
		wmMsg.Metadata.Set(metaKeyUserID, msg.UserID)
	}
	return b.pub.Publish(msg.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface. The message loop runs in
// its own goroutine so Subscribe returns once the subscription is active.
func (b *Bridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			msg := Message{
				Topic:   topic,
				UserID:  wmMsg.Metadata.Get(metaKeyUserID),
				Payload: wmMsg.Payload,
			}

			if err := handler(ctx, msg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
				wmMsg.Nack()
			} else {
				wmMsg.Ack()
			}
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bridge. Closing the subscriber side also stops
// message consumption on every active subscription.
func (b *Bridge) Close() error {
	return b.sub.Close()
}
