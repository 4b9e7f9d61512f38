package middleware

import tele "gopkg.in/telebot.v4"

// PrivateOnly drops updates from groups and channels. The submission
// dialogue only makes sense in a one-on-one chat.
func PrivateOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if chat := c.Chat(); chat != nil && chat.Type != tele.ChatPrivate {
			return nil
		}
		return next(c)
	}
}
