package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/autoservice-bot/core/config"
	"github.com/m3rciful/autoservice-bot/core/telegram/middleware"
)

// MiddlewareHooks lets the application answer rejected and throttled updates.
type MiddlewareHooks struct {
	OnDenied  tele.HandlerFunc
	OnLimited tele.HandlerFunc
}

// DefaultMiddlewares builds the global chain: recover, logging context,
// operator allow-list and, when configured, per-user rate limiting.
func DefaultMiddlewares(cfg *coreconfig.Config, hooks MiddlewareHooks) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	if cfg == nil {
		return mws
	}

	if len(cfg.Telegram.AllowedUserIDs) > 0 {
		mws = append(mws, Middleware{
			Name: "allow_list",
			Use: middleware.AllowListMiddleware(middleware.AllowListOptions{
				Allowed:  cfg.Telegram.Allowed,
				OnReject: hooks.OnDenied,
			}),
		})
	}

	if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  interval,
				Exclude:   exclude,
				OnLimited: hooks.OnLimited,
			}),
		})
	}
	return mws
}
