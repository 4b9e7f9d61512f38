package session

import (
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewMemoryStore constructs the in-memory Store implementation.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the session for a user if it exists, otherwise an idle default.
func (m *memoryStore) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[userID]; ok {
		return *s
	}
	return Session{State: StateIdle}
}

// SetState updates the state for a user, creating a session if necessary.
// The draft is left untouched.
func (m *memoryStore) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	s.State = st
	s.Touched = m.now()
}

// SetDraft overwrites the pending draft for a user.
func (m *memoryStore) SetDraft(userID int64, d *Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		m.sessions[userID] = s
	}
	s.Draft = d
	s.Touched = m.now()
}

// Clear resets the user to idle with no draft.
func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

// Stale returns non-idle users untouched since olderThan.
func (m *memoryStore) Stale(olderThan time.Time) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []int64
	for id, s := range m.sessions {
		if s.State == StateIdle {
			continue
		}
		if s.Touched.Before(olderThan) {
			users = append(users, id)
		}
	}
	return users
}
