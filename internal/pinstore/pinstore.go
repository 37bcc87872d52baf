// Package pinstore is the set of globally-unique pinned line
// identifiers, persisted independently of line payloads.
package pinstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/alienxp03/logbench/internal/linestore"
)

// Persister is the durable slot pinstore rewrites on every mutation.
// linestore.Store satisfies this via its meta bucket.
type Persister interface {
	LoadState() (linestore.State, error)
	UpdatePinned(ids []string) error
}

// Store is the in-memory mirror of the persisted pinned set. Reads
// never touch disk; every mutation writes the full set back eagerly.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	ids       map[string]struct{}
}

// Load constructs a Store from whatever the persister already has.
func Load(p Persister) (*Store, error) {
	state, err := p.LoadState()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(state.PinnedIDs))
	for _, id := range state.PinnedIDs {
		ids[id] = struct{}{}
	}
	return &Store{persister: p, ids: ids}, nil
}

// Has reports whether id is currently pinned.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Snapshot returns the pinned set as a plain map, safe to range over
// without holding the store's lock.
func (s *Store) Snapshot() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out
}

// TogglePin flips membership of id and persists the full set.
func (s *Store) TogglePin(id string) error {
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	ids := s.sortedLocked()
	s.mu.Unlock()
	return s.persister.UpdatePinned(ids)
}

// RemoveFile drops every identifier prefixed "fileName:" (a file tab
// close) and persists the result.
func (s *Store) RemoveFile(fileName string) error {
	prefix := fileName + ":"
	s.mu.Lock()
	for id := range s.ids {
		if strings.HasPrefix(id, prefix) {
			delete(s.ids, id)
		}
	}
	ids := s.sortedLocked()
	s.mu.Unlock()
	return s.persister.UpdatePinned(ids)
}

func (s *Store) sortedLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
