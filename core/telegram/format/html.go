// Package format holds helpers for Telegram HTML parse mode.
package format

import "html"

// EscapeHTML escapes &, <, > and quotes so that text is safe inside HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text into a <b> entity.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Title renders a bold heading followed by an empty line.
func Title(text string) string {
	return Bold(text) + "\n\n"
}
