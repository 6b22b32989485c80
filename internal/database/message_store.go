package database

import (
	"context"
	"fmt"

	"github.com/nfrund/courier/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

const messageTable = "message"

var _ domain.MessageRepository = (*MessageStore)(nil)

// MessageStore handles durable, append-only persistence of chat messages.
type MessageStore struct {
	db     *surrealdb.DB
	ns     string
	dbName string
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *surrealdb.DB, ns, dbName string) *MessageStore {
	return &MessageStore{db: db, ns: ns, dbName: dbName}
}

// Append durably stores a new message. The database assigns the record id
// and creation time, which are returned on the persisted message.
func (s *MessageStore) Append(ctx context.Context, sender, recipient, text, file string) (*domain.ChatMessage, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "CREATE " + messageTable + " SET sender = $sender, recipient = $recipient, text = $text, file = $file, createdAt = time::now() RETURN AFTER"
	params := map[string]any{
		"sender":    sender,
		"recipient": recipient,
		"text":      text,
		"file":      file,
	}

	created, err := QueryOne[domain.ChatMessage](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create and fetch message: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created or could not be fetched")
	}

	return created, nil
}

// Between returns every message exchanged between the two users, ordered by
// creation time ascending, for history fetches.
func (s *MessageStore) Between(ctx context.Context, userA, userB string) ([]domain.ChatMessage, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM " + messageTable + " WHERE sender IN [$a, $b] AND recipient IN [$a, $b] ORDER BY createdAt ASC"
	params := map[string]any{
		"a": userA,
		"b": userB,
	}

	messages, err := Query[domain.ChatMessage](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, nil
}
