// Package ratelimit enforces the per-user submission cooldown.
package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Limiter answers whether a user may submit and records successful submissions.
type Limiter interface {
	// CanSubmit reports whether the cooldown window has elapsed for the user.
	// It has no side effects. A storage failure is returned as an error and
	// must not be interpreted as "rate limited".
	CanSubmit(ctx context.Context, userID int64) (bool, error)

	// RecordSubmission upserts the last-sent timestamp for the user.
	// Replaying with the same or an earlier timestamp leaves the record
	// unchanged, so the stored value is monotonically non-decreasing.
	RecordSubmission(ctx context.Context, userID int64, at time.Time) error
}

// WindowElapsed reports whether the cooldown window has passed since last.
// The boundary is inclusive: exactly window elapsed allows a new submission.
func WindowElapsed(last, now time.Time, window time.Duration) bool {
	return now.Sub(last) >= window
}

// Postgres is the durable Limiter backed by the rate_limits table.
type Postgres struct {
	db     *sqlx.DB
	window time.Duration
	now    func() time.Time
}

// NewPostgres creates a Postgres limiter with the given cooldown window.
func NewPostgres(db *sqlx.DB, window time.Duration) *Postgres {
	return &Postgres{db: db, window: window, now: time.Now}
}

// CanSubmit implements Limiter.
func (p *Postgres) CanSubmit(ctx context.Context, userID int64) (bool, error) {
	var last time.Time
	err := p.db.GetContext(ctx, &last,
		`SELECT last_sent_at FROM rate_limits WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate limit lookup: %w", err)
	}
	return WindowElapsed(last, p.now(), p.window), nil
}

// RecordSubmission implements Limiter. The upsert keeps the greater of the
// stored and the new timestamp, which makes it atomic under concurrent
// workers and idempotent under replay.
func (p *Postgres) RecordSubmission(ctx context.Context, userID int64, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rate_limits (user_id, last_sent_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_sent_at = GREATEST(rate_limits.last_sent_at, EXCLUDED.last_sent_at)`,
		userID, at.UTC())
	if err != nil {
		return fmt.Errorf("rate limit upsert: %w", err)
	}
	return nil
}
