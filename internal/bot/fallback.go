package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
	"github.com/m3rciful/autoservice-bot/core/telegram/ui"
	"github.com/m3rciful/autoservice-bot/internal/conversation"
)

const (
	textUnknown        = "Не понимаю сообщение. Выберите функцию в меню"
	textNoDocuments    = "Файлы не поддерживаются"
	textStaleButton    = "Кнопка устарела, откройте /menu"
	textAccessDenied   = "🚫 Доступ запрещен"
	textTooManyUpdates = "Слишком часто, подождите секунду"
)

type fallbacks struct{}

var _ ui.Fallbacks = fallbacks{}

// UnknownText answers text that no flow or command claims.
func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, textUnknown, markupFor(conversation.KeyboardMenu))
	}
}

// UnknownDocument answers uploaded files.
func (fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, textNoDocuments, nil)
	}
}

// UnknownCallback answers buttons from old messages.
func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textStaleButton})
	}
}

// middlewareHooks answers updates stopped by the allow-list or the rate limiter.
func middlewareHooks() tg.MiddlewareHooks {
	return tg.MiddlewareHooks{
		OnDenied: func(c tele.Context) error {
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: textAccessDenied, ShowAlert: true})
			}
			return tghelpers.SendHTML(c, textAccessDenied, nil)
		},
		OnLimited: func(c tele.Context) error {
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: textTooManyUpdates})
			}
			return nil
		},
	}
}
