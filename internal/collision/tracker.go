package collision

import (
	"fmt"

	"github.com/arloliu/bagmeta/errs"
)

// Tracker tracks entry names and detects name ID collisions.
// It maintains an ID-to-names mapping and the ordered list of names, which is
// the order entries are written to disk.
//
// Distinct names sharing an ID are a collision. The container stores every
// name next to its ID, so a collision is reported but is not an error.
type Tracker struct {
	ids          map[uint64][]string // ID → names for collision detection
	names        []string            // insertion order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ids:   make(map[uint64][]string),
		names: make([]string, 0),
	}
}

// Track records name under id.
// Returns error if:
// - The name is empty (ErrInvalidEntryName)
// - The same name was tracked before (ErrEntryExists)
//
// The boolean result reports whether id was already used by a different name.
func (t *Tracker) Track(name string, id uint64) (bool, error) {
	if name == "" {
		return false, errs.ErrInvalidEntryName
	}

	existing := t.ids[id]
	for _, n := range existing {
		if n == name {
			return false, fmt.Errorf("%w: %s", errs.ErrEntryExists, name)
		}
	}

	collided := len(existing) > 0
	if collided {
		t.hasCollision = true
	}
	t.ids[id] = append(existing, name)
	t.names = append(t.names, name)

	return collided, nil
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in insertion order. The slice is owned by
// the tracker.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all tracked names and collision state.
func (t *Tracker) Reset() {
	// Clear maps but preserve capacity to avoid allocations
	clear(t.ids)
	t.names = t.names[:0]
	t.hasCollision = false
}
