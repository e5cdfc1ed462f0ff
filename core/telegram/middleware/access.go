package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
)

// AllowListOptions defines who may use the bot.
type AllowListOptions struct {
	Allowed  func(userID int64) bool
	OnReject tele.HandlerFunc
}

// AllowListMiddleware stops updates from users rejected by opts.Allowed.
// A nil Allowed lets everybody through.
func AllowListMiddleware(opts AllowListOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if opts.Allowed == nil {
			return next
		}
		return func(c tele.Context) error {
			user := c.Sender()
			if user != nil && opts.Allowed(user.ID) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), logger.CompTG, "tg.access_denied",
				slog.String("outcome", "skip"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
