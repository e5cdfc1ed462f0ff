package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
)

const dedupWindow = 10 * time.Second

// seenUpdates remembers recently logged update ids so that wrapping several
// routes with LoggerMiddleware still yields one receipt line per update.
type seenUpdates struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

var receipts = &seenUpdates{seen: make(map[int]time.Time)}

func (s *seenUpdates) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.seen {
		if now.Sub(at) > dedupWindow {
			delete(s.seen, k)
		}
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = now
	return true
}

// LoggerMiddleware builds the per-update logging context (rid, update, chat
// and user ids) and writes a sampled debug receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()

		if logger.ShouldSampleDebug() && receipts.first(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.Parse(upd.Callback)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(key, 128)),
					slog.String("payload", logger.SanitizeLimit(payload, 256)),
				)
			case upd.Message != nil:
				attrs = append(attrs, slog.Int("payload_len", len([]rune(c.Text()))))
			}
			logger.Debug(ctx, logger.CompTG, "update.received", attrs...)
		}
		return next(c)
	}
}
