// Package bot maps Telegram updates onto submission flow events and turns
// flow outcomes back into user-facing replies.
package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/config"
	"relaybot/internal/flow"
	"relaybot/internal/render"
	"relaybot/internal/telegram/tgctx"
)

// Handlers hold the dependencies shared by all update handlers.
type Handlers struct {
	engine        *flow.Engine
	rend          *render.Renderer
	cooldownHours int
}

func NewHandlers(engine *flow.Engine, rend *render.Renderer, cfg config.SubmissionConfig) *Handlers {
	return &Handlers{
		engine:        engine,
		rend:          rend,
		cooldownHours: cfg.CooldownHours,
	}
}

// Start handles /start: any in-flight submission is dropped and the main
// menu is shown.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tgctx.Build(c)
	if _, err := h.engine.Start(ctx, c.Sender().ID); err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.rend.Reply(ctx, c.Chat().ID, textGreeting, render.MenuMain)
}

// OnText routes plain text: menu buttons first, then the flow.
func (h *Handlers) OnText(c tele.Context) error {
	ctx := tgctx.Build(c)
	switch c.Text() {
	case render.BtnSubmit:
		return h.beginSubmission(ctx, c)
	case render.BtnHelp:
		return h.rend.Reply(ctx, c.Chat().ID, textHelp, render.MenuMain)
	case render.BtnBack:
		return h.cancel(ctx, c)
	}

	outcome, err := h.engine.Text(ctx, c.Sender().ID, c.Text())
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.replyOutcome(ctx, c, outcome)
}

// OnPhoto feeds a photo into the flow while the body is awaited.
func (h *Handlers) OnPhoto(c tele.Context) error {
	ctx := tgctx.Build(c)
	mediaRef, caption, ok := photoContent(c.Message())
	if !ok {
		return nil
	}

	outcome, err := h.engine.Photo(ctx, c.Sender().ID, mediaRef, caption)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.replyOutcome(ctx, c, outcome)
}

// photoContent extracts the file reference and the user's caption from an
// inbound photo message. Telegram carries the caption on the message
// itself; the photo object's own Caption field stays empty on inbound
// updates.
func photoContent(msg *tele.Message) (mediaRef, caption string, ok bool) {
	if msg == nil || msg.Photo == nil {
		return "", "", false
	}
	return msg.Photo.FileID, msg.Caption, true
}

// OnUnsupported handles content kinds the flow cannot publish.
func (h *Handlers) OnUnsupported(c tele.Context) error {
	ctx := tgctx.Build(c)
	outcome, err := h.engine.Unsupported(ctx, c.Sender().ID)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.replyOutcome(ctx, c, outcome)
}

func (h *Handlers) beginSubmission(ctx context.Context, c tele.Context) error {
	outcome, err := h.engine.Begin(ctx, c.Sender().ID)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.replyOutcome(ctx, c, outcome)
}

func (h *Handlers) cancel(ctx context.Context, c tele.Context) error {
	if _, err := h.engine.Cancel(ctx, c.Sender().ID); err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.rend.Reply(ctx, c.Chat().ID, textBack, render.MenuMain)
}

func (h *Handlers) replyOutcome(ctx context.Context, c tele.Context, outcome flow.Outcome) error {
	chatID := c.Chat().ID
	switch outcome {
	case flow.OutcomePromptContent:
		return h.rend.Reply(ctx, chatID, textPromptContent, render.MenuBack)
	case flow.OutcomePromptContact:
		return h.rend.Reply(ctx, chatID, textPromptContact, render.MenuBack)
	case flow.OutcomePublished:
		return h.rend.Reply(ctx, chatID, textPublished, render.MenuMain)
	case flow.OutcomeCooldown:
		return h.rend.Reply(ctx, chatID, fmt.Sprintf(textCooldown, h.cooldownHours), render.MenuMain)
	case flow.OutcomeUnsupported:
		return h.rend.Reply(ctx, chatID, textUnsupported, render.MenuBack)
	case flow.OutcomeIgnored:
		return h.rend.Reply(ctx, chatID, textUseMenu, render.MenuMain)
	default:
		return nil
	}
}

// replyError tells the user something went wrong and propagates the error
// so the middleware logs it with its code.
func (h *Handlers) replyError(ctx context.Context, c tele.Context, err error) error {
	chatID := c.Chat().ID

	var delivery *flow.DeliveryError
	if errors.As(err, &delivery) {
		_ = h.rend.Reply(ctx, chatID, textDeliveryFail, render.MenuMain)
		return err
	}
	_ = h.rend.Reply(ctx, chatID, textInternalFail, render.MenuMain)
	return err
}
