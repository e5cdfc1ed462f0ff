package helpers

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by the send helpers.
// With no dispatcher the helpers call the Bot API inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, logger.CompSender, "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

func htmlOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ReplyMarkup:           markup,
		DisableWebPagePreview: true,
	}
}

// SendHTML queues an HTML message to the current chat. A nil markup sends no keyboard.
func SendHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	noteSent(c, markup != nil)
	return sendAsync(c, "send.html", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// EditOrSendHTML replaces the message that carried the pressed button, or
// sends a new message when there is nothing to edit.
func EditOrSendHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	noteSent(c, markup != nil)
	return sendAsync(c, "edit.html", "editMessageText", func() error {
		return c.EditOrSend(text, opts)
	})
}

// SendDocument uploads a file to the current chat. The reader is rewound
// before every attempt so a retried upload sends the whole file again.
func SendDocument(c tele.Context, name, caption string, r io.ReadSeeker) error {
	noteSent(c, false)
	return sendAsync(c, "send.document", "sendDocument", func() error {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return err
		}
		doc := &tele.Document{File: tele.FromReader(r), FileName: name, Caption: caption}
		return c.Send(doc)
	})
}
