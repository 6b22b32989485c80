package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ChatMessage is one persisted message between two users. At least one of
// Text and File is present; the id and creation time are assigned by the
// store on append and the message is immutable afterwards.
type ChatMessage struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Sender    string                  `json:"sender"`
	Recipient string                  `json:"recipient"`
	Text      string                  `json:"text,omitempty"`
	File      string                  `json:"file,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// IDString returns the record id in its "table:key" form, or "" when the
// message has not been persisted yet.
func (m *ChatMessage) IDString() string {
	if m.ID == nil {
		return ""
	}
	return m.ID.String()
}

// MessageRepository defines the contract for durable message persistence.
type MessageRepository interface {
	// Append durably stores a new message and returns it with its assigned
	// id and creation time.
	Append(ctx context.Context, sender, recipient, text, file string) (*ChatMessage, error)
	// Between returns every message exchanged between the two users,
	// ordered by creation time ascending.
	Between(ctx context.Context, userA, userB string) ([]ChatMessage, error)
}
