package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Limiter implementation for tests and development.
type Memory struct {
	mu       sync.Mutex
	window   time.Duration
	lastSent map[int64]time.Time
	now      func() time.Time
}

// NewMemory constructs an in-memory limiter with the given cooldown window.
func NewMemory(window time.Duration) *Memory {
	return &Memory{
		window:   window,
		lastSent: make(map[int64]time.Time),
		now:      time.Now,
	}
}

// SetClock replaces the time source; intended for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// CanSubmit implements Limiter.
func (m *Memory) CanSubmit(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.lastSent[userID]
	if !ok {
		return true, nil
	}
	return WindowElapsed(last, m.now(), m.window), nil
}

// RecordSubmission implements Limiter.
func (m *Memory) RecordSubmission(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.lastSent[userID]; ok && prev.After(at) {
		return nil
	}
	m.lastSent[userID] = at
	return nil
}
