package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
)

// Handle is the opaque identifier of one live connection.
type Handle int64

// Conn is the write side of a client connection. net.Conn satisfies it.
type Conn interface {
	Write(p []byte) (int, error)
	Close() error
}

// Config holds registry limits
type Config struct {
	// Capacity bounds the number of simultaneous connections
	Capacity int
}

// DefaultConfig returns default registry configuration
func DefaultConfig() Config {
	return Config{Capacity: 256}
}

// entry pairs a connection with its optionally-bound identity. The write
// mutex serializes lines from client workers and the simulation tick so two
// messages never interleave bytes on the wire.
type entry struct {
	conn     Conn
	identity model.Identity

	writeMu sync.Mutex
}

// Registry tracks every live connection and the identity bound to it. It is
// the only component holding connection references; everything else
// addresses connections through handles or identities.
type Registry struct {
	logger   *slog.Logger
	capacity int

	mu         sync.RWMutex
	next       Handle
	conns      map[Handle]*entry
	identities map[model.Identity]Handle
}

// New creates a new connection registry
func New(cfg Config, logger *slog.Logger) *Registry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	return &Registry{
		logger:     logger,
		capacity:   cfg.Capacity,
		conns:      make(map[Handle]*entry),
		identities: make(map[model.Identity]Handle),
	}
}

// Register adds a connection and returns its handle
func (r *Registry) Register(conn Conn) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.conns) >= r.capacity {
		return 0, model.ErrRegistryFull
	}

	r.next++
	handle := r.next
	r.conns[handle] = &entry{conn: conn}
	return handle, nil
}

// Unregister removes a connection and any identity bound to it. The
// connection itself is closed by the caller's read loop, not here.
func (r *Registry) Unregister(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[handle]
	if !ok {
		return
	}
	if e.identity != "" {
		delete(r.identities, e.identity)
	}
	delete(r.conns, handle)
}

// Bind associates an identity with a connection. A given identity can be
// bound to at most one connection at a time.
func (r *Registry) Bind(handle Handle, identity model.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[handle]
	if !ok {
		return model.ErrConnectionNotFound
	}
	if _, taken := r.identities[identity]; taken {
		return model.ErrIdentityBound
	}
	if e.identity != "" {
		delete(r.identities, e.identity)
	}
	e.identity = identity
	r.identities[identity] = handle
	return nil
}

// Unbind removes the identity association from a connection, keeping the
// connection registered.
func (r *Registry) Unbind(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[handle]
	if !ok || e.identity == "" {
		return
	}
	delete(r.identities, e.identity)
	e.identity = ""
}

// Identity returns the identity bound to a handle, if any
func (r *Registry) Identity(handle Handle) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[handle]
	if !ok || e.identity == "" {
		return "", false
	}
	return e.identity, true
}

// Resolve returns the handle an identity is bound to
func (r *Registry) Resolve(identity model.Identity) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.identities[identity]
	return handle, ok
}

// Send writes one protocol line to a connection
func (r *Registry) Send(handle Handle, line string) error {
	r.mu.RLock()
	e, ok := r.conns[handle]
	r.mu.RUnlock()

	if !ok {
		return model.ErrConnectionNotFound
	}
	return e.send(line)
}

// SendTo writes one protocol line to the connection an identity is bound to
func (r *Registry) SendTo(identity model.Identity, line string) error {
	handle, ok := r.Resolve(identity)
	if !ok {
		return model.ErrConnectionNotFound
	}
	return r.Send(handle, line)
}

// Broadcast writes one protocol line to every registered connection.
// Delivery failures are logged and skipped; a dead peer never blocks the
// rest of the broadcast.
func (r *Registry) Broadcast(line string) {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	for _, e := range entries {
		if err := e.send(line); err != nil {
			r.logger.Debug("broadcast delivery failed",
				slog.String("error", err.Error()))
		}
	}
}

// CloseAll closes every registered connection, unblocking their read loops.
// Used by server shutdown; the read loops then unregister themselves.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	for _, e := range entries {
		_ = e.conn.Close()
	}
}

// Count returns the number of registered connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (e *entry) send(line string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if _, err := e.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
