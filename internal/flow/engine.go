// Package flow implements the submission state machine: the dialogue cycle
// idle -> awaiting_content -> awaiting_contact -> idle, the cooldown gate
// on entry, and the publish-then-record terminal transition.
package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"relaybot/internal/logger"
	"relaybot/internal/ratelimit"
	"relaybot/internal/session"
)

const contactSeparator = "\n\n📞 Контакт: "

// Publisher delivers a finished submission to the broadcast channel.
// A single attempt per call; no internal retries.
type Publisher interface {
	PublishText(ctx context.Context, body string) error
	PublishPhoto(ctx context.Context, mediaRef, caption string) error
}

// Engine applies submission events to per-user sessions. Events for the
// same user are strictly serialized; events for different users run
// concurrently.
type Engine struct {
	limiter ratelimit.Limiter
	store   session.Store
	pub     Publisher
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewEngine wires the state machine with its collaborators.
func NewEngine(limiter ratelimit.Limiter, store session.Store, pub Publisher) *Engine {
	return &Engine{
		limiter: limiter,
		store:   store,
		pub:     pub,
		now:     time.Now,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// SetClock replaces the time source; intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// lockUser serializes event handling per user. One event fully resolves,
// including any publish, before the next event for that user is accepted.
func (e *Engine) lockUser(userID int64) func() {
	e.locksMu.Lock()
	mu, ok := e.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[userID] = mu
	}
	e.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Start handles the menu/start event: any in-flight submission is reset.
func (e *Engine) Start(ctx context.Context, userID int64) (Outcome, error) {
	defer e.lockUser(userID)()

	e.store.Clear(userID)
	logger.Debug(ctx, "flow", "flow.reset",
		slog.Int64("user_id", userID),
		slog.String("cause", "menu"),
	)
	return OutcomeMenu, nil
}

// Cancel handles the back event: the draft is discarded, nothing published.
func (e *Engine) Cancel(ctx context.Context, userID int64) (Outcome, error) {
	defer e.lockUser(userID)()

	e.store.Clear(userID)
	logger.Debug(ctx, "flow", "flow.reset",
		slog.Int64("user_id", userID),
		slog.String("cause", "cancel"),
	)
	return OutcomeCancelled, nil
}

// Begin handles the "start submission" event. The cooldown is consulted
// first; a blocked user keeps their current state.
func (e *Engine) Begin(ctx context.Context, userID int64) (Outcome, error) {
	defer e.lockUser(userID)()

	allowed, err := e.limiter.CanSubmit(ctx, userID)
	if err != nil {
		// Storage trouble must not read as "rate limited"; the transition
		// is simply not made.
		logger.Error(ctx, "flow", "flow.begin",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return OutcomeNone, &StorageError{Op: "can_submit", Err: err}
	}
	if !allowed {
		logger.Info(ctx, "flow", "flow.begin",
			slog.String("status", "rate_limited"),
			slog.Int64("user_id", userID),
		)
		return OutcomeCooldown, nil
	}

	e.store.Clear(userID)
	e.store.SetState(userID, session.StateAwaitingContent)
	logger.Info(ctx, "flow", "flow.begin",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(session.StateAwaitingContent)),
	)
	return OutcomePromptContent, nil
}

// Text handles a plain text message. Depending on the state it is either
// the submission body or the contact string.
func (e *Engine) Text(ctx context.Context, userID int64, text string) (Outcome, error) {
	defer e.lockUser(userID)()

	sess := e.store.Get(userID)
	switch sess.State {
	case session.StateAwaitingContent:
		e.store.SetDraft(userID, &session.Draft{Kind: session.DraftText, Body: text})
		e.store.SetState(userID, session.StateAwaitingContact)
		logger.Debug(ctx, "flow", "flow.draft",
			slog.Int64("user_id", userID),
			slog.String("kind", string(session.DraftText)),
		)
		return OutcomePromptContact, nil
	case session.StateAwaitingContact:
		return e.finish(ctx, userID, sess.Draft, text)
	default:
		return OutcomeIgnored, nil
	}
}

// Photo handles a photo message while the body is awaited.
func (e *Engine) Photo(ctx context.Context, userID int64, mediaRef, caption string) (Outcome, error) {
	defer e.lockUser(userID)()

	sess := e.store.Get(userID)
	if sess.State != session.StateAwaitingContent {
		return OutcomeIgnored, nil
	}

	e.store.SetDraft(userID, &session.Draft{
		Kind:     session.DraftPhoto,
		MediaRef: mediaRef,
		Caption:  caption,
	})
	e.store.SetState(userID, session.StateAwaitingContact)
	logger.Debug(ctx, "flow", "flow.draft",
		slog.Int64("user_id", userID),
		slog.String("kind", string(session.DraftPhoto)),
	)
	return OutcomePromptContact, nil
}

// Unsupported handles content kinds outside {text, photo}. While the body
// is awaited the user gets a hint; in any other state the event is ignored.
func (e *Engine) Unsupported(ctx context.Context, userID int64) (Outcome, error) {
	defer e.lockUser(userID)()

	sess := e.store.Get(userID)
	if sess.State != session.StateAwaitingContent {
		return OutcomeIgnored, nil
	}
	logger.Debug(ctx, "flow", "flow.unsupported",
		slog.Int64("user_id", userID),
	)
	return OutcomeUnsupported, nil
}

// finish runs the terminal transition: compose, publish once, record the
// submission, reset the session. Caller holds the user lock.
//
// On a failed publish the session resets to idle and the draft is
// discarded; the user restarts the flow. The rate-limit record is only
// written after the publish succeeded.
func (e *Engine) finish(ctx context.Context, userID int64, draft *session.Draft, contact string) (Outcome, error) {
	if draft == nil {
		// awaiting_contact must be unreachable without a draft; treat as
		// session corruption, not a user error.
		logger.Error(ctx, "flow", "flow.fault",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("cause", "missing_draft"),
		)
		e.store.Clear(userID)
		return OutcomeNone, &ConsistencyError{UserID: userID}
	}

	sid := uuid.NewString()
	start := e.now()

	var err error
	switch draft.Kind {
	case session.DraftPhoto:
		err = e.pub.PublishPhoto(ctx, draft.MediaRef, draft.Caption+contactSeparator+contact)
	default:
		err = e.pub.PublishText(ctx, draft.Body+contactSeparator+contact)
	}
	if err != nil {
		logger.Error(ctx, "flow", "flow.publish",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("submission_id", sid),
			slog.String("kind", string(draft.Kind)),
			slog.String("err", err.Error()),
		)
		e.store.Clear(userID)
		return OutcomeNone, &DeliveryError{Err: err}
	}

	if recErr := e.limiter.RecordSubmission(ctx, userID, e.now()); recErr != nil {
		// The submission already reached the channel; the flow completes
		// and the user is not falsely blocked later.
		logger.Error(ctx, "flow", "flow.record",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("submission_id", sid),
			slog.String("err", recErr.Error()),
		)
	}

	e.store.Clear(userID)
	logger.Info(ctx, "flow", "flow.publish",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("submission_id", sid),
		slog.String("kind", string(draft.Kind)),
		slog.Duration("duration", logger.Took(start)),
	)
	return OutcomePublished, nil
}

// ExpireStale resets sessions idle longer than ttl. Each reset takes the
// same per-user lock as event handling, so a sweep never races an
// in-flight transition. Returns the number of sessions reset.
func (e *Engine) ExpireStale(ctx context.Context, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := e.now().Add(-ttl)
	expired := 0
	for _, userID := range e.store.Stale(cutoff) {
		unlock := e.lockUser(userID)
		// Re-check under the lock: the user may have acted meanwhile.
		sess := e.store.Get(userID)
		if sess.State != session.StateIdle && sess.Touched.Before(cutoff) {
			e.store.Clear(userID)
			expired++
			logger.Info(ctx, "flow", "flow.reset",
				slog.Int64("user_id", userID),
				slog.String("cause", "ttl"),
			)
		}
		unlock()
	}
	return expired
}
