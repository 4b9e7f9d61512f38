package middleware

import (
	"time"

	"relaybot/internal/logger"
	"relaybot/internal/telegram/tgctx"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Logging logs a single receipt line per update and seeds the request
// context (rid, user/chat metadata) for downstream handlers.
func Logging(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tgctx.Store(c, ctx)

		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.Int("update_id", upd.ID),
		}
		if chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user != nil && user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		return next(c)
	}
}

// Summarize wraps a named handler and emits a summary line with status and
// duration after it returns.
func Summarize(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		ctx := tgctx.WithHandler(c, name)
		err := h(c)

		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.String("handler", name),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			attrs = append(attrs,
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				slog.String("err_code", deriveErrorCode(err)),
			)
		}
		logger.Info(ctx, "tg", "handler.handled", attrs...)
		return err
	}
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	type coder interface{ Code() string }
	if c, ok := err.(coder); ok {
		if code := c.Code(); code != "" {
			return code
		}
	}
	return "UNKNOWN_ERROR"
}
