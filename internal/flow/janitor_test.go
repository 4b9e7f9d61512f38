package flow

import (
	"context"
	"testing"
	"time"

	"relaybot/internal/ratelimit"
	"relaybot/internal/session"
)

type stubStore struct {
	sessions map[int64]session.Session
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[int64]session.Session)}
}

func (s *stubStore) Get(userID int64) session.Session {
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	return session.Session{State: session.StateIdle}
}

func (s *stubStore) SetState(userID int64, st session.State) {
	sess := s.Get(userID)
	sess.State = st
	s.sessions[userID] = sess
}

func (s *stubStore) SetDraft(userID int64, d *session.Draft) {
	sess := s.Get(userID)
	sess.Draft = d
	s.sessions[userID] = sess
}

func (s *stubStore) Clear(userID int64) {
	delete(s.sessions, userID)
}

func (s *stubStore) Stale(olderThan time.Time) []int64 {
	var users []int64
	for id, sess := range s.sessions {
		if sess.State != session.StateIdle && sess.Touched.Before(olderThan) {
			users = append(users, id)
		}
	}
	return users
}

func (s *stubStore) touch(userID int64, st session.State, at time.Time) {
	s.sessions[userID] = session.Session{State: st, Touched: at}
}

func TestExpireStaleResetsOnlyOldSessions(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	store := newStubStore()
	engine := NewEngine(ratelimit.NewMemory(12*time.Hour), store, &fakePublisher{})
	engine.SetClock(func() time.Time { return now })

	store.touch(1, session.StateAwaitingContent, now.Add(-2*time.Hour))
	store.touch(2, session.StateAwaitingContact, now.Add(-10*time.Minute))
	store.touch(3, session.StateIdle, now.Add(-5*time.Hour))

	expired := engine.ExpireStale(context.Background(), time.Hour)
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	if store.Get(1).State != session.StateIdle {
		t.Fatal("stale session must be reset")
	}
	if store.Get(2).State != session.StateAwaitingContact {
		t.Fatal("fresh session must survive the sweep")
	}
}

func TestExpireStaleDisabledByZeroTTL(t *testing.T) {
	store := newStubStore()
	engine := NewEngine(ratelimit.NewMemory(12*time.Hour), store, &fakePublisher{})
	store.touch(1, session.StateAwaitingContent, time.Time{})

	if expired := engine.ExpireStale(context.Background(), 0); expired != 0 {
		t.Fatalf("expired = %d, want 0 for disabled TTL", expired)
	}
	if store.Get(1).State != session.StateAwaitingContent {
		t.Fatal("disabled janitor must not touch sessions")
	}
}

func TestJanitorStartNoopWithoutTTL(t *testing.T) {
	engine := NewEngine(ratelimit.NewMemory(12*time.Hour), newStubStore(), &fakePublisher{})
	j := NewJanitor(engine, 0, time.Minute)
	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	j.Stop()
}
