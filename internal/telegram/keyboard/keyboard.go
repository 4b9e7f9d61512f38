// Package keyboard builds reply keyboards for the bot's menus.
package keyboard

import tele "gopkg.in/telebot.v4"

// ReplyRows assembles a resizable reply keyboard from rows of button labels.
func ReplyRows(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		btns := make([]tele.Btn, 0, len(labels))
		for _, label := range labels {
			btns = append(btns, markup.Text(label))
		}
		teleRows = append(teleRows, markup.Row(btns...))
	}
	markup.Reply(teleRows...)
	return markup
}

// Remove returns a markup that removes the current reply keyboard.
func Remove() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
