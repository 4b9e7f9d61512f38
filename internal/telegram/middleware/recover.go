package middleware

import (
	"runtime/debug"

	"relaybot/internal/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Recover catches panics in handlers so one user's update cannot crash the
// bot or disturb other users' sessions.
func Recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(logger.Background(), "tg", "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}
