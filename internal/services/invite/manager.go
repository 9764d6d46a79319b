package invite

import (
	"log/slog"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
)

// Config holds invitation limits
type Config struct {
	// Capacity bounds the number of simultaneously pending invitations
	Capacity int
}

// DefaultConfig returns default invitation configuration
func DefaultConfig() Config {
	return Config{Capacity: 64}
}

// Manager is the invitation state machine. An invitation is pending from
// Challenge until exactly one Respond resolves it, at which point it is
// discarded; a duplicate response is a no-op. At most one invitation may be
// pending per inviter.
//
// The manager holds no connection or match references; the protocol
// dispatcher performs the notifications and match creation its results call
// for.
type Manager struct {
	logger   *slog.Logger
	capacity int

	mu      sync.Mutex
	pending map[model.Identity]*model.Invitation // keyed by inviter
}

// NewManager creates an invitation manager with an empty table
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	return &Manager{
		logger:   logger,
		capacity: cfg.Capacity,
		pending:  make(map[model.Identity]*model.Invitation),
	}
}

// Challenge creates a pending invitation from inviter to invitee
func (m *Manager) Challenge(inviter, invitee model.Identity) error {
	if inviter == invitee {
		return model.ErrInviteSelf
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.pending[inviter]; exists {
		return model.ErrInvitePending
	}
	if len(m.pending) >= m.capacity {
		m.logger.Warn("invitation table full",
			slog.String("inviter", string(inviter)))
		return model.ErrInviteTableFull
	}

	m.pending[inviter] = &model.Invitation{
		Inviter: inviter,
		Invitee: invitee,
		State:   model.InvitePending,
	}
	return nil
}

// Respond resolves the pending invitation matching exactly this
// (inviter, invitee) pair and discards it. The returned flag reports whether
// the invitation was accepted. A response with no matching pending
// invitation returns ErrInviteNotFound, which makes duplicate responses
// harmless no-ops.
func (m *Manager) Respond(inviter, invitee model.Identity, accept bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, exists := m.pending[inviter]
	if !exists || inv.Invitee != invitee {
		return false, model.ErrInviteNotFound
	}

	if accept {
		inv.State = model.InviteAccepted
	} else {
		inv.State = model.InviteRejected
	}
	delete(m.pending, inviter)
	return accept, nil
}

// CancelInvolving discards every pending invitation in which the identity is
// either side, returning the removed invitations. Used by the
// disconnect-cleanup path.
func (m *Manager) CancelInvolving(identity model.Identity) []model.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []model.Invitation
	for inviter, inv := range m.pending {
		if inv.Inviter == identity || inv.Invitee == identity {
			removed = append(removed, *inv)
			delete(m.pending, inviter)
		}
	}
	return removed
}

// PendingCount returns the number of pending invitations
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
