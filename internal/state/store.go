package state

import (
	"sync"
)

// Store holds the latest published View for readers outside the controller loop.
type Store struct {
	mu   sync.RWMutex
	view View
}

// Update replaces the stored view.
func (s *Store) Update(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = v
}

// Snapshot returns a copy of the current view.
func (s *Store) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}
