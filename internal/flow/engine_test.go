package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"relaybot/internal/ratelimit"
	"relaybot/internal/session"
)

type publishedText struct {
	body string
}

type publishedPhoto struct {
	mediaRef string
	caption  string
}

type fakePublisher struct {
	texts  []publishedText
	photos []publishedPhoto
	err    error
}

func (f *fakePublisher) PublishText(_ context.Context, body string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, publishedText{body: body})
	return nil
}

func (f *fakePublisher) PublishPhoto(_ context.Context, mediaRef, caption string) error {
	if f.err != nil {
		return f.err
	}
	f.photos = append(f.photos, publishedPhoto{mediaRef: mediaRef, caption: caption})
	return nil
}

func (f *fakePublisher) calls() int {
	return len(f.texts) + len(f.photos)
}

type failingLimiter struct {
	canErr error
}

func (f *failingLimiter) CanSubmit(context.Context, int64) (bool, error) {
	return false, f.canErr
}

func (f *failingLimiter) RecordSubmission(context.Context, int64, time.Time) error {
	return nil
}

type fixture struct {
	engine  *Engine
	limiter *ratelimit.Memory
	store   session.Store
	pub     *fakePublisher
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		limiter: ratelimit.NewMemory(12 * time.Hour),
		store:   session.NewMemoryStore(),
		pub:     &fakePublisher{},
		now:     time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	}
	f.limiter.SetClock(func() time.Time { return f.now })
	f.engine = NewEngine(f.limiter, f.store, f.pub)
	f.engine.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) state(userID int64) session.State {
	return f.store.Get(userID).State
}

func TestFullTextSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(100)

	out, err := f.engine.Begin(ctx, user)
	if err != nil || out != OutcomePromptContent {
		t.Fatalf("Begin = (%s, %v)", out, err)
	}
	if f.state(user) != session.StateAwaitingContent {
		t.Fatalf("state after Begin = %s", f.state(user))
	}

	out, err = f.engine.Text(ctx, user, "Hello")
	if err != nil || out != OutcomePromptContact {
		t.Fatalf("Text = (%s, %v)", out, err)
	}
	if f.state(user) != session.StateAwaitingContact {
		t.Fatalf("state after content = %s", f.state(user))
	}

	out, err = f.engine.Text(ctx, user, "@alice")
	if err != nil || out != OutcomePublished {
		t.Fatalf("contact = (%s, %v)", out, err)
	}
	if f.state(user) != session.StateIdle {
		t.Fatalf("state after publish = %s", f.state(user))
	}

	if len(f.pub.texts) != 1 || len(f.pub.photos) != 0 {
		t.Fatalf("publisher calls: texts=%d photos=%d", len(f.pub.texts), len(f.pub.photos))
	}
	want := "Hello\n\n📞 Контакт: @alice"
	if f.pub.texts[0].body != want {
		t.Fatalf("published body = %q, want %q", f.pub.texts[0].body, want)
	}

	// Rate record was written: a second Begin within the window is blocked.
	out, err = f.engine.Begin(ctx, user)
	if err != nil || out != OutcomeCooldown {
		t.Fatalf("Begin within window = (%s, %v)", out, err)
	}
	if f.state(user) != session.StateIdle {
		t.Fatalf("cooldown must not change state, got %s", f.state(user))
	}
}

func TestCooldownBlocksWithoutPublisherCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(101)

	if err := f.limiter.RecordSubmission(ctx, user, f.now.Add(-time.Hour)); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	out, err := f.engine.Begin(ctx, user)
	if err != nil || out != OutcomeCooldown {
		t.Fatalf("Begin = (%s, %v)", out, err)
	}
	if f.pub.calls() != 0 {
		t.Fatal("publisher must not be invoked while rate limited")
	}
	if f.state(user) != session.StateIdle {
		t.Fatalf("state = %s, want idle", f.state(user))
	}
}

func TestCooldownBoundaryAllowsResubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(102)

	if err := f.limiter.RecordSubmission(ctx, user, f.now); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	f.now = f.now.Add(12 * time.Hour)

	out, err := f.engine.Begin(ctx, user)
	if err != nil || out != OutcomePromptContent {
		t.Fatalf("Begin at boundary = (%s, %v)", out, err)
	}
}

func TestPhotoSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(103)

	if _, err := f.engine.Begin(ctx, user); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	out, err := f.engine.Photo(ctx, user, "file-abc", "Look")
	if err != nil || out != OutcomePromptContact {
		t.Fatalf("Photo = (%s, %v)", out, err)
	}

	out, err = f.engine.Text(ctx, user, "t.me/bob")
	if err != nil || out != OutcomePublished {
		t.Fatalf("contact = (%s, %v)", out, err)
	}

	if len(f.pub.photos) != 1 || len(f.pub.texts) != 0 {
		t.Fatalf("publisher calls: texts=%d photos=%d", len(f.pub.texts), len(f.pub.photos))
	}
	got := f.pub.photos[0]
	if got.mediaRef != "file-abc" {
		t.Fatalf("media ref = %q", got.mediaRef)
	}
	want := "Look\n\n📞 Контакт: t.me/bob"
	if got.caption != want {
		t.Fatalf("caption = %q, want %q", got.caption, want)
	}
}

func TestCancelClearsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(104)

	_, _ = f.engine.Begin(ctx, user)
	_, _ = f.engine.Text(ctx, user, "draft body")

	out, err := f.engine.Cancel(ctx, user)
	if err != nil || out != OutcomeCancelled {
		t.Fatalf("Cancel = (%s, %v)", out, err)
	}
	if f.pub.calls() != 0 {
		t.Fatal("cancel must not publish")
	}
	sess := f.store.Get(user)
	if sess.State != session.StateIdle || sess.Draft != nil {
		t.Fatalf("after cancel: state=%s draft=%v", sess.State, sess.Draft)
	}

	// A fresh flow starts with no leftover draft.
	_, _ = f.engine.Begin(ctx, user)
	if d := f.store.Get(user).Draft; d != nil {
		t.Fatalf("fresh flow carries leftover draft: %v", d)
	}
}

func TestStartResetsInFlightSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(105)

	_, _ = f.engine.Begin(ctx, user)
	_, _ = f.engine.Text(ctx, user, "half done")

	out, err := f.engine.Start(ctx, user)
	if err != nil || out != OutcomeMenu {
		t.Fatalf("Start = (%s, %v)", out, err)
	}
	sess := f.store.Get(user)
	if sess.State != session.StateIdle || sess.Draft != nil {
		t.Fatalf("after menu: state=%s draft=%v", sess.State, sess.Draft)
	}
}

func TestContactDeliveryFailureResetsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(106)

	_, _ = f.engine.Begin(ctx, user)
	_, _ = f.engine.Text(ctx, user, "Hello")

	f.pub.err = fmt.Errorf("telegram: bad gateway")
	out, err := f.engine.Text(ctx, user, "@alice")
	if out != OutcomeNone {
		t.Fatalf("outcome = %s, want none", out)
	}
	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("err = %v, want DeliveryError", err)
	}

	// Fixed policy: the session resets to idle on delivery failure.
	if f.state(user) != session.StateIdle {
		t.Fatalf("state after delivery failure = %s, want idle", f.state(user))
	}

	// The submission did not count: the user may start over immediately.
	f.pub.err = nil
	out, err = f.engine.Begin(ctx, user)
	if err != nil || out != OutcomePromptContent {
		t.Fatalf("Begin after failure = (%s, %v)", out, err)
	}
}

func TestRecordWrittenOnlyAfterPublishSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(107)

	_, _ = f.engine.Begin(ctx, user)
	_, _ = f.engine.Text(ctx, user, "Hello")

	f.pub.err = fmt.Errorf("down")
	if _, err := f.engine.Text(ctx, user, "@alice"); err == nil {
		t.Fatal("expected delivery error")
	}

	ok, err := f.limiter.CanSubmit(ctx, user)
	if err != nil {
		t.Fatalf("CanSubmit: %v", err)
	}
	if !ok {
		t.Fatal("failed delivery must not consume the cooldown")
	}
}

func TestUnsupportedContentKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(108)

	_, _ = f.engine.Begin(ctx, user)

	out, err := f.engine.Unsupported(ctx, user)
	if err != nil || out != OutcomeUnsupported {
		t.Fatalf("Unsupported = (%s, %v)", out, err)
	}
	if f.state(user) != session.StateAwaitingContent {
		t.Fatalf("state = %s, want awaiting_content", f.state(user))
	}

	// Outside the content step the event is silently ignored.
	_, _ = f.engine.Cancel(ctx, user)
	out, err = f.engine.Unsupported(ctx, user)
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("Unsupported while idle = (%s, %v)", out, err)
	}
}

func TestTextWhileIdleIsIgnored(t *testing.T) {
	f := newFixture(t)
	out, err := f.engine.Text(context.Background(), 109, "random chatter")
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("Text while idle = (%s, %v)", out, err)
	}
	if f.pub.calls() != 0 {
		t.Fatal("idle text must not publish")
	}
}

func TestMissingDraftIsConsistencyFault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(110)

	// Force the broken shape directly: contact step with no draft.
	f.store.SetState(user, session.StateAwaitingContact)

	out, err := f.engine.Text(ctx, user, "@alice")
	if out != OutcomeNone {
		t.Fatalf("outcome = %s, want none", out)
	}
	var cErr *ConsistencyError
	if !errors.As(err, &cErr) {
		t.Fatalf("err = %v, want ConsistencyError", err)
	}
	if f.pub.calls() != 0 {
		t.Fatal("fault must not publish")
	}
	if f.state(user) != session.StateIdle {
		t.Fatalf("session must be force-reset, state = %s", f.state(user))
	}
}

func TestBeginStorageErrorDoesNotTransition(t *testing.T) {
	store := session.NewMemoryStore()
	pub := &fakePublisher{}
	engine := NewEngine(&failingLimiter{canErr: fmt.Errorf("connection refused")}, store, pub)

	out, err := engine.Begin(context.Background(), 111)
	if out != OutcomeNone {
		t.Fatalf("outcome = %s, want none", out)
	}
	var sErr *StorageError
	if !errors.As(err, &sErr) {
		t.Fatalf("err = %v, want StorageError", err)
	}
	if store.Get(111).State != session.StateIdle {
		t.Fatal("storage failure must not enter the flow")
	}
}

func TestPublisherInvokedExactlyOncePerSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const user = int64(112)

	_, _ = f.engine.Begin(ctx, user)
	_, _ = f.engine.Text(ctx, user, "Hello")
	_, _ = f.engine.Text(ctx, user, "@alice")

	if f.pub.calls() != 1 {
		t.Fatalf("publisher calls = %d, want 1", f.pub.calls())
	}

	// A trailing text after completion is an idle event, not a re-publish.
	out, err := f.engine.Text(ctx, user, "thanks!")
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("trailing text = (%s, %v)", out, err)
	}
	if f.pub.calls() != 1 {
		t.Fatalf("publisher calls after trailing text = %d, want 1", f.pub.calls())
	}
}
