package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/middleware"
)

// MessageHandler serves conversation history and the people directory.
type MessageHandler struct {
	messages domain.MessageRepository
	users    domain.UserRepository
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages domain.MessageRepository, users domain.UserRepository) *MessageHandler {
	return &MessageHandler{messages: messages, users: users}
}

// messageResponse is the DTO for one history message. Its field names match
// the frames pushed over the WebSocket so clients render both the same way.
type messageResponse struct {
	ID        string    `json:"_id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text,omitempty"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// personResponse is the DTO for one directory entry.
type personResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// History returns the full conversation between the authenticated user and
// the user in the path, oldest first (GET /api/messages/:userId).
func (h *MessageHandler) History(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no token"})
	}

	other := c.Param("userId")
	if other == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing user id"})
	}

	msgs, err := h.messages.Between(c.Request().Context(), claim.UserID, other)
	if err != nil {
		slog.Error("Failed to load conversation", "userID", claim.UserID, "other", other, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load messages"})
	}

	out := make([]messageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageResponse{
			ID:        msgs[i].IDString(),
			Sender:    msgs[i].Sender,
			Recipient: msgs[i].Recipient,
			Text:      msgs[i].Text,
			File:      msgs[i].File,
			CreatedAt: msgs[i].CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// People returns every registered user, so clients can list offline
// contacts alongside the live presence roster (GET /api/people).
func (h *MessageHandler) People(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load people"})
	}

	out := make([]personResponse, 0, len(users))
	for i := range users {
		out = append(out, personResponse{
			ID:       users[i].IDString(),
			Username: users[i].Username,
		})
	}
	return c.JSON(http.StatusOK, out)
}
