package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	"github.com/m3rciful/autoservice-bot/core/telegram/callbacks"
)

// CallbackRoute dispatches every inline button press through the registry.
// Unknown ids go to the registry's not-found handler.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		key := callbacks.Key(c)
		h, ok := reg.GetCallback(key)
		extras := []slog.Attr{slog.String("cb_key", key)}
		if !ok {
			h = reg.CallbackNotFound()
			extras = append(extras, slog.String("cause", "not_found"))
		}
		if h == nil {
			return skip(c, "callback.unknown")
		}
		return serve(c, "callback."+handlerName(key), h, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: wrap(handler)}
}
