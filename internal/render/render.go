// Package render sends bot replies and keeps the chat tidy by replacing
// the previous bot message instead of stacking new ones.
package render

import (
	"context"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/logger"
	"relaybot/internal/telegram/keyboard"
	"log/slog"
)

// Menu selects the reply keyboard attached to a message.
type Menu int

const (
	MenuNone Menu = iota
	MenuMain
	MenuBack
)

// Button labels shown to users. Handlers match incoming text against these.
const (
	BtnSubmit = "📝 Отправить заявку"
	BtnHelp   = "❓ Помощь"
	BtnBack   = "🔙 Назад"
)

// API is the slice of the bot client the renderer needs.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Renderer sends messages with the appropriate menu and remembers the last
// bot message per chat so it can be removed before the next one.
type Renderer struct {
	api API

	mu   sync.Mutex
	last map[int64]int
}

func New(api API) *Renderer {
	return &Renderer{
		api:  api,
		last: make(map[int64]int),
	}
}

// Reply deletes the previous bot message in the chat (best effort) and
// sends text with the requested menu keyboard.
func (r *Renderer) Reply(ctx context.Context, chatID int64, text string, menu Menu) error {
	r.deletePrevious(ctx, chatID)

	msg, err := r.api.Send(tele.ChatID(chatID), text, markupFor(menu))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.last[chatID] = msg.ID
	r.mu.Unlock()
	return nil
}

func (r *Renderer) deletePrevious(ctx context.Context, chatID int64) {
	r.mu.Lock()
	prev, ok := r.last[chatID]
	if ok {
		delete(r.last, chatID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(prev),
		ChatID:    chatID,
	}
	if err := r.api.Delete(stored); err != nil {
		// The message may be too old or already gone. Not a failure.
		logger.Debug(ctx, "render", "render.delete_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 128)),
		)
	}
}

func markupFor(menu Menu) *tele.ReplyMarkup {
	switch menu {
	case MenuMain:
		return keyboard.ReplyRows(
			[]string{BtnSubmit},
			[]string{BtnHelp},
		)
	case MenuBack:
		return keyboard.ReplyRows([]string{BtnBack})
	default:
		return keyboard.Remove()
	}
}
