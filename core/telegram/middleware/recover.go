package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
)

// ErrPanic is returned in place of a recovered handler panic.
type ErrPanic struct {
	Value any
}

func (e ErrPanic) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// RecoverMiddleware turns handler panics into an ErrPanic and logs the stack.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(tghelpers.BuildContext(c), logger.CompTG, "tg.panic",
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				err = ErrPanic{Value: r}
			}
		}()
		return next(c)
	}
}
