package sessionstore

import (
	"context"
	"sync"

	"github.com/osa030/wavedeck/internal/app/playback"
)

// MemoryStore keeps the session in memory. Intended for tests and for
// running without durable persistence.
type MemoryStore struct {
	mu      sync.Mutex
	session playback.Session
	set     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored session wholesale.
func (s *MemoryStore) Save(_ context.Context, session playback.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.set = true
	return nil
}

// Load returns the stored session, or found=false when none was saved.
func (s *MemoryStore) Load(_ context.Context) (playback.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.set, nil
}

// Clear removes the stored session.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = playback.Session{}
	s.set = false
	return nil
}
