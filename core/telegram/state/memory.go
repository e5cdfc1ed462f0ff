package state

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]Session
}

// NewMemoryStore constructs an in-process Store. Sessions untouched for longer
// than ttl, or their own shorter TTL, are treated as idle; ttl <= 0 keeps them
// until cleared.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]Session),
	}
}

// Load returns the session for a user if it exists, otherwise an idle session.
func (m *memoryStore) Load(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Idle(), nil
	}
	if ttl := s.expiry(m.ttl); ttl > 0 && m.now().Sub(s.UpdatedAt) > ttl {
		m.mu.Lock()
		if cur, ok := m.sessions[userID]; ok && cur.UpdatedAt.Equal(s.UpdatedAt) {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return Idle(), nil
	}
	return s, nil
}

// Save replaces the session for a user.
func (m *memoryStore) Save(_ context.Context, userID int64, s Session) error {
	s.UpdatedAt = m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.Active() {
		delete(m.sessions, userID)
		return nil
	}
	m.sessions[userID] = s
	return nil
}

// Clear removes the entire session for a user.
func (m *memoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
