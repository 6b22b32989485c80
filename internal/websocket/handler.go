// Package websocket upgrades HTTP requests to WebSocket connections and
// runs each connection's read and write pumps, bridging the socket to the
// connection registry and the message pipeline.
package websocket

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/auth"
	"github.com/nfrund/courier/internal/chat"
	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/presence"
	"github.com/nfrund/courier/internal/registry"
)

// writeTimeout bounds a single frame write to a client.
const writeTimeout = 10 * time.Second

// tokenCookieName is the cookie the client sends its session token in.
const tokenCookieName = "token"

// Handler accepts WebSocket upgrades and wires each connection into the
// registry, the presence broadcaster, and the message pipeline.
type Handler struct {
	verifier auth.Verifier
	registry *registry.Registry
	presence *presence.Broadcaster
	pipeline *chat.Pipeline
	logger   *slog.Logger
}

// NewHandler creates a Handler over the given collaborators.
func NewHandler(verifier auth.Verifier, reg *registry.Registry, pres *presence.Broadcaster, pipe *chat.Pipeline) *Handler {
	return &Handler{
		verifier: verifier,
		registry: reg,
		presence: pres,
		pipeline: pipe,
		logger:   slog.Default().With("component", "websocket"),
	}
}

// transport adapts a coder/websocket connection to the registry's
// Transport surface.
type transport struct {
	ws *websocket.Conn
}

// Ping performs a full ping round trip, returning once the peer answers
// or the context expires.
func (t *transport) Ping(ctx context.Context) error {
	return t.ws.Ping(ctx)
}

// Terminate closes the underlying socket immediately, without a close
// handshake. The read pump unblocks with an error and runs the normal
// teardown path.
func (t *transport) Terminate() {
	t.ws.CloseNow()
}

var _ registry.Transport = (*transport)(nil)

// Serve handles a WebSocket upgrade request. The connection stays open even
// when the token cookie is missing or invalid; such connections are
// anonymous — they appear in the presence list without an identity and
// their chat frames are discarded.
func (h *Handler) Serve(c echo.Context) error {
	claim := h.resolveClaim(c)

	ws, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true, // In production, check origin.
	})
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return err
	}

	conn := registry.NewConn(claim, &transport{ws: ws})
	h.registry.Add(conn)
	h.logger.Info("Client connected", "connID", conn.ID, "userID", conn.UserID)

	go h.writePump(conn, ws)
	go h.readPump(conn, ws)

	// Everyone, including the new client, sees the updated roster.
	h.presence.Broadcast()

	return nil
}

// resolveClaim verifies the token cookie. Any failure — no cookie, empty
// value, bad signature, expiry — yields an anonymous claim rather than an
// error, so unauthenticated clients can still observe presence.
func (h *Handler) resolveClaim(c echo.Context) domain.Claim {
	cookie, err := c.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return domain.Claim{}
	}

	claim, err := h.verifier.Verify(cookie.Value)
	if err != nil {
		h.logger.Debug("Rejected token on WebSocket upgrade, treating as anonymous", "error", err)
		return domain.Claim{}
	}
	return claim
}

// readPump pumps inbound frames into the message pipeline. It owns the
// connection's teardown: whichever of clean close and heartbeat eviction
// wins the registry removal runs the close and the presence rebroadcast.
func (h *Handler) readPump(conn *registry.Conn, ws *websocket.Conn) {
	defer func() {
		ws.Close(websocket.StatusNormalClosure, "Client disconnected")
		if h.registry.Remove(conn) {
			conn.Close()
			h.logger.Info("Client disconnected", "connID", conn.ID, "userID", conn.UserID)
			h.presence.Broadcast()
		}
	}()

	ctx := context.Background()
	for {
		_, payload, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				h.logger.Debug("WebSocket closed by client", "connID", conn.ID)
			} else if err != io.EOF {
				h.logger.Debug("WebSocket read error", "connID", conn.ID, "error", err)
			}
			return
		}

		h.pipeline.Handle(ctx, conn.Claim(), payload)
	}
}

// writePump drains the connection's outbound channel onto the socket. It
// exits when the channel is closed during teardown or when a write fails.
func (h *Handler) writePump(conn *registry.Conn, ws *websocket.Conn) {
	for payload := range conn.Outbound() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := ws.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.logger.Debug("WebSocket write error", "connID", conn.ID, "error", err)
			return
		}
	}
}
