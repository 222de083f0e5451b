package tgui

import (
	tele "gopkg.in/telebot.v4"
)

// Reply builds a one-time reply keyboard from rows of button labels.
// Flows use these for guided answers; the keyboard disappears after use.
func Reply(rows [][]string) *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, r := range rows {
		btns := make([]tele.Btn, 0, len(r))
		for _, label := range r {
			btns = append(btns, tele.Btn{Text: label})
		}
		teleRows = append(teleRows, rm.Row(btns...))
	}
	rm.Reply(teleRows...)
	return rm
}
