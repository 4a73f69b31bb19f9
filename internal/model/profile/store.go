package profile

import "sync"

// Store exposes assistant profile retrieval for HTTP handlers.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
	SetInstructions(id, instructions string) bool
}

// MemoryStore implements Store with an in-memory slice. The real
// instructions source is external (published against the profile), so the
// store only caches whatever the surface last pushed into it.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the known profiles.
func (s *MemoryStore) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Profile(nil), s.items...)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Profile{}, false
}

// SetInstructions replaces the cached instructions for a profile.
func (s *MemoryStore) SetInstructions(id, instructions string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Instructions = instructions
			return true
		}
	}
	return false
}
