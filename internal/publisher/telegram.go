// Package publisher delivers finished submissions to the broadcast channel.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/logger"
)

// Channel publishes to a single fixed Telegram channel. One attempt per
// call; retry policy belongs to the caller, which here is "none".
type Channel struct {
	bot  *tele.Bot
	dest tele.ChatID
}

// NewChannel wires the publisher with its bot instance and destination.
func NewChannel(bot *tele.Bot, channelID int64) *Channel {
	return &Channel{bot: bot, dest: tele.ChatID(channelID)}
}

// PublishText relays a text submission to the channel.
func (c *Channel) PublishText(ctx context.Context, body string) error {
	if _, err := c.bot.Send(c.dest, body); err != nil {
		logger.Error(ctx, "publisher", "publish.text",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("send text to channel: %w", err)
	}
	logger.Debug(ctx, "publisher", "publish.text",
		slog.String("status", "ok"),
	)
	return nil
}

// PublishPhoto relays a photo submission, referenced by Telegram file ID,
// with the composed caption.
func (c *Channel) PublishPhoto(ctx context.Context, mediaRef, caption string) error {
	photo := &tele.Photo{
		File:    tele.File{FileID: mediaRef},
		Caption: caption,
	}
	if _, err := c.bot.Send(c.dest, photo); err != nil {
		logger.Error(ctx, "publisher", "publish.photo",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("send photo to channel: %w", err)
	}
	logger.Debug(ctx, "publisher", "publish.photo",
		slog.String("status", "ok"),
	)
	return nil
}
