package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/courier/internal/domain"
)

// Transport is the minimal surface the registry, heartbeat, and presence
// layers need from the underlying socket. Ping performs a full liveness
// round trip, returning only once the peer acknowledges or the context
// expires. Terminate forcibly closes the socket without a close handshake.
type Transport interface {
	Ping(ctx context.Context) error
	Terminate()
}

// Conn represents a single live connection and the identity bound to it.
// A user may hold any number of simultaneous connections (tabs, devices);
// an anonymous connection carries an empty UserID and its chat frames are
// discarded downstream.
type Conn struct {
	// ID uniquely identifies this connection, not the user.
	ID       string
	UserID   string
	Username string

	transport Transport

	// send is the buffered channel of outbound frames. The write pump is
	// the only reader; everything else enqueues through Send.
	send   chan []byte
	mu     sync.RWMutex
	closed bool
}

// sendBufferSize bounds how far a slow client may lag before frames are
// dropped. The heartbeat monitor, not backpressure, evicts dead clients.
const sendBufferSize = 64

// NewConn creates a connection bound to the given identity claim.
func NewConn(claim domain.Claim, t Transport) *Conn {
	return &Conn{
		ID:        uuid.NewString(),
		UserID:    claim.UserID,
		Username:  claim.Username,
		transport: t,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Claim returns the identity bound to this connection.
func (c *Conn) Claim() domain.Claim {
	return domain.Claim{UserID: c.UserID, Username: c.Username}
}

// Transport returns the underlying socket surface.
func (c *Conn) Transport() Transport {
	return c.transport
}

// Send enqueues an outbound frame without blocking. Frames sent to a closed
// connection are discarded; frames that do not fit the buffer are dropped
// with a warning, on the assumption the heartbeat will evict the client.
func (c *Conn) Send(msg []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		slog.Warn("Connection send buffer full, dropping frame", "connID", c.ID, "userID", c.UserID)
	}
}

// Outbound returns the channel the write pump drains. It is closed exactly
// once, by Close, which unblocks the pump.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// Close closes the outbound channel. Safe to call more than once and
// concurrently with Send.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
