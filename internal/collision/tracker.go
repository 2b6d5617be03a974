package collision

import (
	"fmt"

	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/format"
)

// Tracker indexes the content IDs of one migration table while it is read
// and detects two classes of problems:
//   - the same numeric ID assigned twice (a decode error),
//   - two distinct qualified names sharing a fingerprint (a hash collision,
//     recorded but tolerated; fingerprints are then not unique identifiers).
type Tracker struct {
	ids          map[format.ContentID]string // ID → qualified name
	fingerprints map[uint64]string           // fingerprint → qualified name
	names        []string                    // qualified names in track order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ids:          make(map[format.ContentID]string),
		fingerprints: make(map[uint64]string),
	}
}

// Track records that qualified (source/name) owns id and hashes to fingerprint.
// It returns errs.ErrDuplicateContentID if id or qualified was already tracked.
func (t *Tracker) Track(id format.ContentID, qualified string, fingerprint uint64) error {
	if existing, ok := t.ids[id]; ok {
		return fmt.Errorf("%w: id %d assigned to both %q and %q", errs.ErrDuplicateContentID, id, existing, qualified)
	}

	if existing, ok := t.fingerprints[fingerprint]; ok {
		if existing == qualified {
			return fmt.Errorf("%w: %q listed twice", errs.ErrDuplicateContentID, qualified)
		}
		t.hasCollision = true
	}

	t.ids[id] = qualified
	t.fingerprints[fingerprint] = qualified
	t.names = append(t.names, qualified)

	return nil
}

// HasCollision reports whether two distinct names shared a fingerprint.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the qualified names in the order they were tracked.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked IDs.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all tracked state so the tracker can index another table.
func (t *Tracker) Reset() {
	clear(t.ids)
	clear(t.fingerprints)
	t.names = t.names[:0]
	t.hasCollision = false
}
