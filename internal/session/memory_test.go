package session

import (
	"testing"
	"time"
)

func TestGetReturnsIdleDefault(t *testing.T) {
	store := NewMemoryStore()
	s := store.Get(99)
	if s.State != StateIdle {
		t.Fatalf("unknown user state = %s, want idle", s.State)
	}
	if s.Draft != nil {
		t.Fatal("unknown user must have no draft")
	}
}

func TestSetStateKeepsDraft(t *testing.T) {
	store := NewMemoryStore()
	store.SetDraft(1, &Draft{Kind: DraftText, Body: "hello"})
	store.SetState(1, StateAwaitingContact)

	s := store.Get(1)
	if s.State != StateAwaitingContact {
		t.Fatalf("state = %s, want awaiting_contact", s.State)
	}
	if s.Draft == nil || s.Draft.Body != "hello" {
		t.Fatal("SetState must not touch the draft")
	}
}

func TestClearResetsEverything(t *testing.T) {
	store := NewMemoryStore()
	store.SetState(1, StateAwaitingContent)
	store.SetDraft(1, &Draft{Kind: DraftPhoto, MediaRef: "file-1"})
	store.Clear(1)

	s := store.Get(1)
	if s.State != StateIdle || s.Draft != nil {
		t.Fatalf("after Clear: state=%s draft=%v", s.State, s.Draft)
	}
}

func TestStaleSkipsIdleAndFresh(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	store := &memoryStore{
		sessions: make(map[int64]*Session),
		now:      func() time.Time { return now },
	}

	store.SetState(1, StateAwaitingContent) // stale after advance
	now = now.Add(time.Hour)
	store.SetState(2, StateAwaitingContact) // fresh
	store.SetState(3, StateIdle)            // idle, never stale

	stale := store.Stale(now.Add(-30 * time.Minute))
	if len(stale) != 1 || stale[0] != 1 {
		t.Fatalf("stale = %v, want [1]", stale)
	}
}
