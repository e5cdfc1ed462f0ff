// Package keyboard builds inline keyboards from button ids.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is an inline button that reports ID, and Payload when set, on press.
type Button struct {
	Label   string
	ID      string
	Payload string
}

// Inline lays rows out as an inline keyboard.
func Inline(rows ...[]Button) *tele.ReplyMarkup {
	return Extend(&tele.ReplyMarkup{}, rows...)
}

// Extend appends rows below the inline keyboard of markup and returns it.
func Extend(markup *tele.ReplyMarkup, rows ...[]Button) *tele.ReplyMarkup {
	for _, row := range rows {
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btn := markup.Data(b.Label, b.ID, b.Payload)
			line = append(line, *btn.Inline())
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, line)
	}
	return markup
}

// Grid splits buttons into rows of at most perRow buttons; perRow < 1 puts
// every button on its own row.
func Grid(buttons []Button, perRow int) [][]Button {
	if perRow < 1 {
		perRow = 1
	}
	rows := make([][]Button, 0, (len(buttons)+perRow-1)/perRow)
	for i := 0; i < len(buttons); i += perRow {
		rows = append(rows, buttons[i:min(i+perRow, len(buttons))])
	}
	return rows
}
