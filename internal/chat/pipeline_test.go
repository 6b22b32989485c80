package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// mockStore implements domain.MessageRepository for testing.
type mockStore struct {
	mu      sync.Mutex
	appends []domain.ChatMessage
	err     error
}

func (m *mockStore) Append(ctx context.Context, sender, recipient, text, file string) (*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	id := surrealmodels.NewRecordID("message", "m1")
	msg := domain.ChatMessage{
		ID:        &id,
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		File:      file,
	}
	m.appends = append(m.appends, msg)
	return &msg, nil
}

func (m *mockStore) Between(ctx context.Context, userA, userB string) ([]domain.ChatMessage, error) {
	return nil, nil
}

func (m *mockStore) appended() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatMessage, len(m.appends))
	copy(out, m.appends)
	return out
}

// mockPublisher implements pubsub.Publisher for testing.
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pubsub.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestPipeline_ValidFrame(t *testing.T) {
	store := &mockStore{}
	publisher := &mockPublisher{}
	pipeline := NewPipeline(store, publisher)

	sender := domain.Claim{UserID: "user:alice", Username: "alice"}
	pipeline.Handle(context.Background(), sender, []byte(`{"recipient":"user:bob","text":"hi"}`))

	appends := store.appended()
	require.Len(t, appends, 1)
	assert.Equal(t, "user:alice", appends[0].Sender)
	assert.Equal(t, "user:bob", appends[0].Recipient)
	assert.Equal(t, "hi", appends[0].Text)
	assert.Empty(t, appends[0].File)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, TopicMessages, published[0].Topic)
	assert.Equal(t, "user:alice", published[0].UserID)

	var frame DeliveryFrame
	require.NoError(t, json.Unmarshal(published[0].Payload, &frame))
	assert.Equal(t, "message:m1", frame.ID)
	assert.Equal(t, "user:alice", frame.Sender)
	assert.Equal(t, "user:bob", frame.Recipient)
	assert.Equal(t, "hi", frame.Text)
}

func TestPipeline_FileOnlyFrame(t *testing.T) {
	store := &mockStore{}
	publisher := &mockPublisher{}
	pipeline := NewPipeline(store, publisher)

	sender := domain.Claim{UserID: "user:alice", Username: "alice"}
	pipeline.Handle(context.Background(), sender, []byte(`{"recipient":"user:bob","file":"https://bucket/1.png"}`))

	require.Len(t, store.appended(), 1)
	require.Len(t, publisher.published(), 1)
}

func TestPipeline_DiscardsInvalidFrames(t *testing.T) {
	tests := []struct {
		name   string
		sender domain.Claim
		raw    string
	}{
		{"no recipient", domain.Claim{UserID: "user:alice"}, `{"text":"hi"}`},
		{"no text or file", domain.Claim{UserID: "user:alice"}, `{"recipient":"user:bob"}`},
		{"unparsable payload", domain.Claim{UserID: "user:alice"}, `not json`},
		{"anonymous sender", domain.Claim{}, `{"recipient":"user:bob","text":"hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			publisher := &mockPublisher{}
			pipeline := NewPipeline(store, publisher)

			pipeline.Handle(context.Background(), tt.sender, []byte(tt.raw))

			assert.Empty(t, store.appended(), "no store write expected")
			assert.Empty(t, publisher.published(), "no publish expected")
		})
	}
}

func TestPipeline_StoreFailureSuppressesPublish(t *testing.T) {
	store := &mockStore{err: assert.AnError}
	publisher := &mockPublisher{}
	pipeline := NewPipeline(store, publisher)

	sender := domain.Claim{UserID: "user:alice", Username: "alice"}
	pipeline.Handle(context.Background(), sender, []byte(`{"recipient":"user:bob","text":"hi"}`))

	assert.Empty(t, publisher.published(), "a message that failed to persist must not be published")
}

func TestPipeline_PublishFailureIsContained(t *testing.T) {
	store := &mockStore{}
	publisher := &mockPublisher{err: assert.AnError}
	pipeline := NewPipeline(store, publisher)

	sender := domain.Claim{UserID: "user:alice", Username: "alice"}

	// Must not panic; the message stays durable for later history fetches.
	pipeline.Handle(context.Background(), sender, []byte(`{"recipient":"user:bob","text":"hi"}`))

	assert.Len(t, store.appended(), 1)
}
