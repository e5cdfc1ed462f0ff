package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
	"github.com/m3rciful/autoservice-bot/core/telegram/middleware"
)

// serve runs fn under the handler name and writes one summary line with
// status, message count, keyboard flag and duration.
func serve(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn(c)

	msgs, kb := tghelpers.Counters(c)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", status),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(ctx, logger.CompTG, "handler.handled", append(attrs, extras...)...)
	return err
}

// skip logs an update nobody handled.
func skip(c tele.Context, name string) error {
	logger.Debug(tghelpers.WithHandler(c, name), logger.CompTG, "handler.handled",
		slog.String("status", "skip"),
		slog.String("outcome", "skip"),
	)
	return nil
}

func handlerName(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "/")))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func errorCode(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) {
		if code := strings.TrimSpace(coder.Code()); code != "" {
			return strings.ToUpper(code)
		}
	}
	var p middleware.ErrPanic
	if errors.As(err, &p) {
		return "PANIC"
	}
	return "HANDLER_ERROR"
}

// wrap applies the per-route middleware shared by all routers.
func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(h)
}
