package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWindowElapsedBoundaryInclusive(t *testing.T) {
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	window := 12 * time.Hour

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just_under", base.Add(window - time.Second), false},
		{"exactly_at_window", base.Add(window), true},
		{"just_over", base.Add(window + time.Second), true},
		{"immediately", base, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WindowElapsed(base, tc.now, window); got != tc.want {
				t.Fatalf("WindowElapsed(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestMemoryCanSubmitNoRecord(t *testing.T) {
	m := NewMemory(12 * time.Hour)
	ok, err := m.CanSubmit(context.Background(), 42)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if !ok {
		t.Fatal("user without a record must be allowed to submit")
	}
}

func TestMemoryCooldownCycle(t *testing.T) {
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	m := NewMemory(12 * time.Hour)
	m.SetClock(func() time.Time { return now })

	ctx := context.Background()
	if err := m.RecordSubmission(ctx, 7, now); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}

	ok, err := m.CanSubmit(ctx, 7)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if ok {
		t.Fatal("submission must be blocked right after recording")
	}

	now = now.Add(12 * time.Hour)
	ok, err = m.CanSubmit(ctx, 7)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if !ok {
		t.Fatal("submission must be allowed exactly at the window boundary")
	}
}

func TestMemoryRecordIdempotent(t *testing.T) {
	at := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	m := NewMemory(12 * time.Hour)

	ctx := context.Background()
	if err := m.RecordSubmission(ctx, 1, at); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if err := m.RecordSubmission(ctx, 1, at); err != nil {
		t.Fatalf("RecordSubmission replay: %v", err)
	}
	if got := m.lastSent[1]; !got.Equal(at) {
		t.Fatalf("replay changed the record: %s", got)
	}
}

func TestMemoryRecordMonotonic(t *testing.T) {
	at := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	earlier := at.Add(-time.Hour)
	later := at.Add(time.Hour)
	m := NewMemory(12 * time.Hour)

	ctx := context.Background()
	_ = m.RecordSubmission(ctx, 1, at)
	_ = m.RecordSubmission(ctx, 1, earlier)
	if got := m.lastSent[1]; !got.Equal(at) {
		t.Fatalf("earlier timestamp must not win, got %s", got)
	}
	_ = m.RecordSubmission(ctx, 1, later)
	if got := m.lastSent[1]; !got.Equal(later) {
		t.Fatalf("later timestamp must win, got %s", got)
	}
}
