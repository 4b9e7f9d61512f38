// Package tgctx bridges telebot contexts and context.Context for logging.
package tgctx

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/logger"
)

const contextKey = "logger_ctx"

// Store attaches a reusable context to tele.Context for downstream helpers.
func Store(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// From returns the context previously stored by middleware, if any.
func From(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx, true
		}
	}
	return nil, false
}

// Build constructs a context.Context from tele.Context, enriching it with
// RID and update/user/chat metadata for consistent logging downstream.
func Build(c tele.Context) context.Context {
	if cached, ok := From(c); ok {
		return cached
	}

	upd := c.Update()
	user := c.Sender()
	chat := c.Chat()

	var chatID, userID int64
	if chat != nil {
		chatID = chat.ID
	}
	if user != nil {
		userID = user.ID
	}

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := context.Background()
	ctx = logger.WithRID(ctx, rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	Store(c, ctx)
	return ctx
}

// WithHandler enriches the stored context with handler metadata.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := Build(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	Store(c, ctx)
	return ctx
}
