// Package session holds the volatile per-user dialogue state.
// Sessions live only for the lifetime of the process; drafts are never
// written to durable storage.
package session

import "time"

// State identifies the user's position in the submission dialogue.
type State string

const (
	// StateIdle indicates there is no active submission flow.
	StateIdle State = "idle"
	// StateAwaitingContent means the bot is waiting for the submission body.
	StateAwaitingContent State = "awaiting_content"
	// StateAwaitingContact means the bot is waiting for the contact string.
	StateAwaitingContact State = "awaiting_contact"
)

// DraftKind distinguishes the accepted content kinds of a draft.
type DraftKind string

const (
	// DraftText is a plain text submission.
	DraftText DraftKind = "text"
	// DraftPhoto is a photo submission referenced by its Telegram file ID.
	DraftPhoto DraftKind = "photo"
)

// Draft is the pending submission content captured during the flow.
// Body is set for text drafts; MediaRef and Caption for photo drafts.
type Draft struct {
	Kind     DraftKind
	Body     string
	MediaRef string
	Caption  string
}

// Session stores the dialogue state and the in-progress draft for a user.
type Session struct {
	State   State
	Draft   *Draft
	Touched time.Time
}

// Store orchestrates per-user sessions. Absence of a session is a valid
// default: Get returns an idle session for unknown users.
type Store interface {
	Get(userID int64) Session
	SetState(userID int64, st State)
	SetDraft(userID int64, d *Draft)
	Clear(userID int64)

	// Stale returns the users whose sessions were last touched before the
	// given instant and are not idle. Used by the session janitor.
	Stale(olderThan time.Time) []int64
}
