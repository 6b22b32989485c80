// Package heartbeat detects silently failed connections. Sockets can die
// without a close frame (network partition, crashed client); without the
// monitor the registry and presence view would drift from reality
// indefinitely.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/courier/internal/presence"
	"github.com/nfrund/courier/internal/registry"
)

const (
	// DefaultInterval is how often every registered connection is probed.
	DefaultInterval = 5 * time.Second

	// DefaultDeadline is how long a probe waits for the acknowledgment
	// before the connection is declared dead. Worst-case detection latency
	// is bounded by interval + deadline.
	DefaultDeadline = 1 * time.Second
)

// Monitor periodically probes every registered connection for liveness and
// evicts the unresponsive ones.
type Monitor struct {
	registry *registry.Registry
	presence *presence.Broadcaster
	interval time.Duration
	deadline time.Duration
	logger   *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the probe interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithDeadline overrides the acknowledgment deadline.
func WithDeadline(d time.Duration) Option {
	return func(m *Monitor) { m.deadline = d }
}

// NewMonitor creates a Monitor over the given registry. Evictions trigger a
// presence broadcast so every remaining client converges on the true
// membership.
func NewMonitor(reg *registry.Registry, pres *presence.Broadcaster, opts ...Option) *Monitor {
	m := &Monitor{
		registry: reg,
		presence: pres,
		interval: DefaultInterval,
		deadline: DefaultDeadline,
		logger:   slog.Default().With("component", "heartbeat"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run probes on a fixed interval until the context is canceled. It is meant
// to run as one long-lived goroutine per process.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep probes every registered connection once. Probes run concurrently so
// one stalled socket cannot delay detection on the others.
func (m *Monitor) Sweep(ctx context.Context) {
	for _, conn := range m.registry.All() {
		go m.probe(ctx, conn)
	}
}

// probe performs one liveness round trip. The connection is considered
// awaiting its acknowledgment for the duration of the Ping call; returning
// within the deadline means alive, anything else means dead.
func (m *Monitor) probe(ctx context.Context, conn *registry.Conn) {
	transport := conn.Transport()
	if transport == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, m.deadline)
	defer cancel()

	if err := transport.Ping(ctx); err != nil {
		m.evict(conn, err)
	}
}

// evict tears down a dead connection: terminate the socket, deregister, and
// broadcast the new presence snapshot. Remove reports whether this probe
// won the race against the connection's own teardown, keeping the cleanup
// and its presence broadcast exactly-once.
func (m *Monitor) evict(conn *registry.Conn, cause error) {
	conn.Transport().Terminate()

	if m.registry.Remove(conn) {
		conn.Close()
		m.logger.Info("Evicted unresponsive connection",
			"connID", conn.ID,
			"userID", conn.UserID,
			"cause", cause)
		m.presence.Broadcast()
	}
}
