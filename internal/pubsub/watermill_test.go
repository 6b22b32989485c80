package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_PublishSubscribe(t *testing.T) {
	bridge := NewBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:   "test.topic",
		UserID:  "user:alice",
		Payload: []byte(`{"hello":"world"}`),
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "test.topic", msg.Topic)
		assert.Equal(t, "user:alice", msg.UserID)
		assert.JSONEq(t, `{"hello":"world"}`, string(msg.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestBridge_SubscriptionSurvivesHandlerError(t *testing.T) {
	bridge := NewBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 2)
	calls := 0
	err := bridge.Subscribe(ctx, "test.topic", func(ctx context.Context, msg Message) error {
		calls++
		if calls == 1 {
			return assert.AnError
		}
		received <- msg
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("first")}))

	// The nacked first message may be redelivered; either way a later
	// publish must still reach the handler.
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("second")}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription stopped processing after a handler error")
	}
}
