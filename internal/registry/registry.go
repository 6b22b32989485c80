// Package registry tracks every live connection and the identity bound to
// it. It is the only mutable state shared between the connection handlers,
// the heartbeat monitor, and the delivery fan-out, so every operation is
// safe under concurrent invocation.
package registry

import "sync"

// Registry is the authoritative set of live connections on this instance.
type Registry struct {
	mu sync.RWMutex

	// conns is the full set of live connections, identified and anonymous.
	conns map[*Conn]struct{}

	// byUser indexes identified connections by user id for delivery lookups.
	byUser map[string][]*Conn
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		conns:  make(map[*Conn]struct{}),
		byUser: make(map[string][]*Conn),
	}
}

// Add registers a new connection. Multiple connections per user are allowed.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c] = struct{}{}
	if c.UserID != "" {
		r.byUser[c.UserID] = append(r.byUser[c.UserID], c)
	}
}

// Remove unregisters a connection and reports whether it was present.
// Removing an already-absent connection is a no-op; the report lets the
// racing teardown paths (clean close vs heartbeat eviction) agree on who
// performs the one-time cleanup.
func (r *Registry) Remove(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c]; !ok {
		return false
	}
	delete(r.conns, c)

	if c.UserID != "" {
		conns := r.byUser[c.UserID]
		for i, other := range conns {
			if other == c {
				r.byUser[c.UserID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(r.byUser[c.UserID]) == 0 {
			delete(r.byUser, c.UserID)
		}
	}

	return true
}

// All returns a point-in-time snapshot of every live connection.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Conn, 0, len(r.conns))
	for c := range r.conns {
		all = append(all, c)
	}
	return all
}

// ForUser returns a snapshot of the live connections bound to the given
// user id. The slice is empty when the user is offline on this instance.
func (r *Registry) ForUser(userID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	out := make([]*Conn, len(conns))
	copy(out, conns)
	return out
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
