package auth

import (
	"sync"
)

// SessionStore persists the full token -> session table.
type SessionStore interface {
	Load() (map[string]Session, error)
	Save(sessions map[string]Session) error
}

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

func (s *InMemorySessionStore) Load() (map[string]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySessions(s.sessions), nil
}

func (s *InMemorySessionStore) Save(sessions map[string]Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = copySessions(sessions)
	return nil
}

func copySessions(in map[string]Session) map[string]Session {
	out := make(map[string]Session, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
