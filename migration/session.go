package migration

import (
	"fmt"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/format"
	"github.com/arloliu/factosave/internal/collision"
	"github.com/arloliu/factosave/internal/hash"
)

// Key is the stable identity of a content prototype.
type Key struct {
	Source string
	Name   string
}

func (k Key) String() string {
	return k.Source + "/" + k.Name
}

type kindIndex struct {
	byID    map[format.ContentID]Key
	byKey   map[Key]format.ContentID
	tracker *collision.Tracker
}

// Session indexes the migration tables of one stream so that the numeric
// IDs used elsewhere in that stream can be resolved to stable identities.
// A Session is built once per decode or encode and is read-only afterwards,
// so it may be shared by readers.
type Session struct {
	kinds map[format.ContentKind]*kindIndex
}

var _ codec.Resolver = (*Session)(nil)

// NewSession indexes tables. It fails with errs.ErrDuplicateContentID if an
// ID or identity of one kind is listed twice.
func NewSession(tables ...Table) (*Session, error) {
	s := &Session{kinds: make(map[format.ContentKind]*kindIndex)}
	for _, t := range tables {
		if err := s.add(t); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Session) add(t Table) error {
	idx, ok := s.kinds[t.Kind]
	if !ok {
		idx = &kindIndex{
			byID:    make(map[format.ContentID]Key, t.Len()),
			byKey:   make(map[Key]format.ContentID, t.Len()),
			tracker: collision.NewTracker(),
		}
		s.kinds[t.Kind] = idx
	}

	for _, g := range t.Groups {
		for _, e := range g.Entries {
			key := Key{Source: g.Source, Name: e.Name}
			if err := idx.tracker.Track(e.ID, key.String(), hash.ContentKey(g.Source, e.Name)); err != nil {
				return fmt.Errorf("%s table: %w", t.Kind, err)
			}
			idx.byID[e.ID] = key
			idx.byKey[key] = e.ID
		}
	}

	return nil
}

// Resolve returns the identity behind a session-local ID.
func (s *Session) Resolve(kind format.ContentKind, id format.ContentID) (Key, bool) {
	idx, ok := s.kinds[kind]
	if !ok {
		return Key{}, false
	}
	key, ok := idx.byID[id]

	return key, ok
}

// Lookup returns the session-local ID of an identity.
func (s *Session) Lookup(kind format.ContentKind, source, name string) (format.ContentID, bool) {
	idx, ok := s.kinds[kind]
	if !ok {
		return 0, false
	}
	id, ok := idx.byKey[Key{Source: source, Name: name}]

	return id, ok
}

// Known reports whether id was introduced by the tables of kind.
func (s *Session) Known(kind format.ContentKind, id format.ContentID) bool {
	_, ok := s.Resolve(kind, id)
	return ok
}

// Fingerprint returns the xxHash64 identity of the content behind id. It is
// stable across sessions, unlike id itself.
func (s *Session) Fingerprint(kind format.ContentKind, id format.ContentID) (uint64, bool) {
	key, ok := s.Resolve(kind, id)
	if !ok {
		return 0, false
	}

	return hash.ContentKey(key.Source, key.Name), true
}

// Len returns the number of entries of kind.
func (s *Session) Len(kind format.ContentKind) int {
	if idx, ok := s.kinds[kind]; ok {
		return idx.tracker.Count()
	}

	return 0
}

// Names returns the qualified names of kind in table order.
func (s *Session) Names(kind format.ContentKind) []string {
	if idx, ok := s.kinds[kind]; ok {
		return idx.tracker.Names()
	}

	return nil
}

// HasFingerprintCollision reports whether two distinct identities of one
// kind share a fingerprint, in which case fingerprints of that session are
// not unique keys.
func (s *Session) HasFingerprintCollision() bool {
	for _, idx := range s.kinds {
		if idx.tracker.HasCollision() {
			return true
		}
	}

	return false
}
