package presence

import (
	"strings"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
)

// Directory is the set of currently authenticated, connected identities.
// Iteration order is insertion order; removal keeps the relative order of the
// remainder. Adding an identity that is already present is a no-op, a
// tightened invariant over the legacy list which allowed duplicates.
type Directory struct {
	mu      sync.RWMutex
	order   []model.Identity
	present map[model.Identity]bool

	// onChange is invoked with the fresh snapshot after every effective
	// add or remove, outside the directory lock.
	onChange func([]model.Identity)
}

// New creates an empty presence directory. onChange may be nil.
func New(onChange func([]model.Identity)) *Directory {
	return &Directory{
		present:  make(map[model.Identity]bool),
		onChange: onChange,
	}
}

// Add inserts an identity. Returns false if it was already present.
func (d *Directory) Add(identity model.Identity) bool {
	d.mu.Lock()
	if d.present[identity] {
		d.mu.Unlock()
		return false
	}
	d.present[identity] = true
	d.order = append(d.order, identity)
	snapshot := d.snapshotLocked()
	d.mu.Unlock()

	d.notify(snapshot)
	return true
}

// Remove deletes an identity. Returns false if it was not present.
func (d *Directory) Remove(identity model.Identity) bool {
	d.mu.Lock()
	if !d.present[identity] {
		d.mu.Unlock()
		return false
	}
	delete(d.present, identity)
	for i, id := range d.order {
		if id == identity {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	snapshot := d.snapshotLocked()
	d.mu.Unlock()

	d.notify(snapshot)
	return true
}

// Contains reports whether an identity is present
func (d *Directory) Contains(identity model.Identity) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.present[identity]
}

// Snapshot returns the identities in insertion order
func (d *Directory) Snapshot() []model.Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *Directory) snapshotLocked() []model.Identity {
	out := make([]model.Identity, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Directory) notify(snapshot []model.Identity) {
	if d.onChange != nil {
		d.onChange(snapshot)
	}
}

// FormatList renders a snapshot as the comma-joined list used by
// UPDATE_LIST. An empty snapshot renders as the empty string.
func FormatList(identities []model.Identity) string {
	parts := make([]string, len(identities))
	for i, id := range identities {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
