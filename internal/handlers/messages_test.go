package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/auth"
	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// memMessages is an in-memory domain.MessageRepository for handler tests.
type memMessages struct {
	msgs []domain.ChatMessage
}

func (m *memMessages) Append(ctx context.Context, sender, recipient, text, file string) (*domain.ChatMessage, error) {
	id := surrealmodels.NewRecordID("message", len(m.msgs))
	msg := domain.ChatMessage{
		ID:        &id,
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		File:      file,
		CreatedAt: time.Now().UTC(),
	}
	m.msgs = append(m.msgs, msg)
	return &msg, nil
}

func (m *memMessages) Between(ctx context.Context, userA, userB string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, msg := range m.msgs {
		pair := msg.Sender == userA && msg.Recipient == userB ||
			msg.Sender == userB && msg.Recipient == userA
		if pair {
			out = append(out, msg)
		}
	}
	return out, nil
}

func newMessagesTestServer(t *testing.T) (*echo.Echo, *memMessages, *memUsers, *auth.TokenService) {
	t.Helper()

	users := newMemUsers()
	messages := &memMessages{}
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	handler := NewMessageHandler(messages, users)

	e := echo.New()
	e.Validator = NewValidator()
	protected := middleware.Auth(tokens)
	e.GET("/api/messages/:userId", handler.History, protected)
	e.GET("/api/people", handler.People, protected)

	return e, messages, users, tokens
}

func authedGet(t *testing.T, e *echo.Echo, tokens *auth.TokenService, path, userID, username string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := tokens.Issue(domain.Claim{UserID: userID, Username: username})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token, Path: "/"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHistory(t *testing.T) {
	t.Run("returns both directions of the conversation", func(t *testing.T) {
		e, messages, _, tokens := newMessagesTestServer(t)
		ctx := context.Background()

		_, err := messages.Append(ctx, "user:alice", "user:bob", "hi bob", "")
		require.NoError(t, err)
		_, err = messages.Append(ctx, "user:bob", "user:alice", "hi alice", "")
		require.NoError(t, err)
		_, err = messages.Append(ctx, "user:alice", "user:carol", "hi carol", "")
		require.NoError(t, err)

		rec := authedGet(t, e, tokens, "/api/messages/user:bob", "user:alice", "alice")

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []messageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "hi bob", got[0].Text)
		assert.Equal(t, "hi alice", got[1].Text)
		assert.Equal(t, "message:0", got[0].ID)
	})

	t.Run("empty conversation yields an empty array", func(t *testing.T) {
		e, _, _, tokens := newMessagesTestServer(t)

		rec := authedGet(t, e, tokens, "/api/messages/user:bob", "user:alice", "alice")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("requires authentication", func(t *testing.T) {
		e, _, _, _ := newMessagesTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/messages/user:bob", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPeople_ListsEveryRegisteredUser(t *testing.T) {
	e, _, users, tokens := newMessagesTestServer(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	_, err = users.Create(ctx, "bob", "hash")
	require.NoError(t, err)

	rec := authedGet(t, e, tokens, "/api/people", "user:alice", "alice")

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []personResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)

	names := []string{got[0].Username, got[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}
