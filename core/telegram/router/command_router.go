package router

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	tg "github.com/m3rciful/autoservice-bot/core/telegram"
)

// CommandRoutes returns one route per registered command and alias.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		h := def.Handler
		label := handlerName(name)
		handler := wrap(func(c tele.Context) error {
			return serve(c, label, h)
		})
		routes = append(routes, tg.Route{Endpoint: name, Handler: handler})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + handlerName(alias), Handler: handler})
		}
	}

	logger.Info(context.Background(), logger.CompWire, "tg.wire",
		slog.String("status", "ok"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
