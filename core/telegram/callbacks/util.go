// Package callbacks decodes inline button presses.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Parse returns the button id and payload of a callback. Telebot encodes
// inline button data as "\f<unique>|<payload>"; an already split Unique wins.
func Parse(cb *tele.Callback) (key, payload string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ = strings.Cut(raw, "|")
	if cb.Unique != "" {
		return cb.Unique, payload
	}
	return strings.TrimSpace(key), payload
}

// Key returns the button id of the callback in c, or "".
func Key(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}
