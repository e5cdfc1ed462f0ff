// Package ui connects an application's fallback answers to the routers.
package ui

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	"github.com/m3rciful/autoservice-bot/core/telegram/router"
)

// Fallbacks answers updates that no command, button or active flow claims.
type Fallbacks interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Install sets the registry's callback fallback and returns the text
// options to pass to router.TextRoutes.
func Install(reg *tg.Registry, fb Fallbacks) router.TextOptions {
	reg.SetCallbackNotFound(fb.UnknownCallback())
	return router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
	}
}
