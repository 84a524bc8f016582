// Package transcript holds the ordered, append-only list of chat entries
// shown on a screen.
package transcript

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/diogo/mangroveguide/internal/models"
)

var (
	ErrEmptySeed    = errors.New("transcript seed is empty")
	ErrSeedRole     = errors.New("transcript seed must start with a model entry")
	ErrDuplicateID  = errors.New("duplicate entry id")
	ErrInvalidEntry = errors.New("invalid entry")
)

// Transcript is an immutable snapshot. Appending returns a new snapshot
// and never changes entries visible through an existing one.
type Transcript struct {
	entries []models.Entry
}

// Of builds a snapshot from entries without validation. Used for
// gateway-side fakes and rendering of static data.
func Of(entries ...models.Entry) Transcript {
	cp := make([]models.Entry, len(entries))
	for i, e := range entries {
		cp[i] = e.Clone()
	}
	return Transcript{entries: cp}
}

// Len returns the number of entries.
func (t Transcript) Len() int { return len(t.entries) }

// At returns the i-th entry.
func (t Transcript) At(i int) models.Entry { return t.entries[i].Clone() }

// Last returns the newest entry, or false when the transcript is empty.
func (t Transcript) Last() (models.Entry, bool) {
	if len(t.entries) == 0 {
		return models.Entry{}, false
	}
	return t.entries[len(t.entries)-1].Clone(), true
}

// Entries yields the entries in insertion order. The sequence can be
// ranged over any number of times.
func (t Transcript) Entries() iter.Seq[models.Entry] {
	return func(yield func(models.Entry) bool) {
		for _, e := range t.entries {
			if !yield(e.Clone()) {
				return
			}
		}
	}
}

// Append returns a snapshot with e added at the end.
func (t Transcript) Append(e models.Entry) Transcript {
	// The capped slice forces append to copy, so snapshots sharing the
	// backing array never observe each other's writes.
	return Transcript{entries: append(t.entries[:len(t.entries):len(t.entries)], e.Clone())}
}

// Store is the mutable owner of a transcript. It enforces id uniqueness
// and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current Transcript
	ids     map[string]struct{}
}

// New creates a store from a screen seed. The seed must be non-empty,
// start with a model entry and contain valid entries with distinct ids.
func New(seed []models.Entry) (*Store, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	if seed[0].Role != models.RoleModel {
		return nil, ErrSeedRole
	}

	s := &Store{ids: make(map[string]struct{}, len(seed))}
	for _, e := range seed {
		if err := s.Append(e); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return s, nil
}

// Append adds e to the end of the transcript.
func (s *Store) Append(e models.Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[e.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	s.ids[e.ID] = struct{}{}
	s.current = s.current.Append(e)
	return nil
}

// Has reports whether an entry with the given id exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Find returns the entry with the given id.
func (s *Store) Find(id string) (models.Entry, bool) {
	if !s.Has(id) {
		return models.Entry{}, false
	}
	for e := range s.Snapshot().Entries() {
		if e.ID == id {
			return e, true
		}
	}
	return models.Entry{}, false
}

// Snapshot returns the current transcript.
func (s *Store) Snapshot() Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Len returns the number of entries.
func (s *Store) Len() int { return s.Snapshot().Len() }
