package router

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
)

// Flow is implemented by multi-step conversations that consume free text.
type Flow interface {
	// Active reports whether userID is in the middle of a flow.
	Active(ctx context.Context, userID int64) bool
	// HandleText feeds the message to the active flow.
	HandleText(c tele.Context) error
}

// TextOptions controls what happens to updates no flow or command claims.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain text: an active flow wins, then commands typed
// without the slash (and aliases), then the registry fallback, then UnknownText.
func TextRoutes(flow Flow, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		if flow != nil && c.Sender() != nil && flow.Active(tghelpers.BuildContext(c), c.Sender().ID) {
			return serve(c, "flow", flow.HandleText)
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return serve(c, handlerName(key), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return serve(c, "fallback", fb)
			}
		}
		if opts.UnknownText != nil {
			return serve(c, "unknown_text", opts.UnknownText)
		}
		return skip(c, "unknown_text")
	}

	doc := func(c tele.Context) error {
		if opts.UnknownDocument != nil {
			return serve(c, "unexpected_document", opts.UnknownDocument)
		}
		return skip(c, "unexpected_document")
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(doc)},
	}
}
