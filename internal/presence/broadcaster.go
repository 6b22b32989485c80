// Package presence computes the online-user snapshot and pushes it to every
// live connection whenever registry membership changes.
package presence

import (
	"encoding/json"
	"log/slog"

	"github.com/nfrund/courier/internal/registry"
)

// Entry is one connection's identity in a presence snapshot. A user with
// several open connections appears once per connection; an anonymous
// connection appears with empty fields. This mirrors listing connections,
// not distinct users.
type Entry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Snapshot is the outbound presence frame.
type Snapshot struct {
	Online []Entry `json:"online"`
}

// Broadcaster pushes presence snapshots derived from the registry.
type Broadcaster struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster over the given registry.
func NewBroadcaster(reg *registry.Registry) *Broadcaster {
	return &Broadcaster{
		registry: reg,
		logger:   slog.Default().With("component", "presence"),
	}
}

// Broadcast computes the current snapshot and sends it, as a single frame,
// to every connection in the registry. It is invoked after every
// registration change; no coalescing is needed because the last broadcast
// always reflects the registry's final state.
func (b *Broadcaster) Broadcast() {
	conns := b.registry.All()

	entries := make([]Entry, 0, len(conns))
	for _, c := range conns {
		entries = append(entries, Entry{UserID: c.UserID, Username: c.Username})
	}

	payload, err := json.Marshal(Snapshot{Online: entries})
	if err != nil {
		b.logger.Error("Failed to marshal presence snapshot", "error", err)
		return
	}

	b.logger.Debug("Broadcasting presence", "connections", len(conns))
	for _, c := range conns {
		c.Send(payload)
	}
}
