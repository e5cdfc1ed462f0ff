// Package bot adapts the conversation engine to Telegram: it registers the
// commands and buttons and turns engine replies into sent or edited messages.
package bot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/autoservice-bot/core/logger"
	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	"github.com/m3rciful/autoservice-bot/core/telegram/commands"
	tghelpers "github.com/m3rciful/autoservice-bot/core/telegram/helpers"
	"github.com/m3rciful/autoservice-bot/internal/conversation"
	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// Handlers serves Telegram updates with a conversation engine.
type Handlers struct {
	engine *conversation.Engine
}

// NewHandlers wraps engine.
func NewHandlers(engine *conversation.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// action runs one engine operation for the sender of c.
type action func(ctx context.Context, userID int64) ([]conversation.Reply, error)

// Register adds the bot commands and button handlers to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	cmds := map[string]commands.Command{
		"/start":  {Handler: h.start, Description: "Начать"},
		"/menu":   {Handler: h.static(h.engine.Menu), Description: "Меню"},
		"/help":   {Handler: h.static(h.engine.Help), Description: "Помощь"},
		"/cancel": {Handler: h.send(h.engine.Cancel), Description: "Отменить действие"},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}

	callbacks := map[string]tele.HandlerFunc{
		cbMenu:              answered(h.static(h.engine.Menu)),
		cbCancel:            answered(h.edit(h.engine.Cancel)),
		cbRegisterUser:      answered(h.edit(h.engine.BeginRegistration)),
		cbTotalInfo:         answered(h.static(h.engine.Info, true)),
		cbInfoClients:       answered(h.edit(h.report(conversation.ReportClients))),
		cbInfoServices:      answered(h.edit(h.report(conversation.ReportServices))),
		cbInfoBranches:      answered(h.edit(h.report(conversation.ReportBranches))),
		cbInfoParts:         answered(h.edit(h.report(conversation.ReportParts))),
		cbViewOrders:        answered(h.send(h.report(conversation.ReportOrders))),
		cbReportOrders:      answered(h.edit(h.report(conversation.ReportDaily))),
		cbExportReport:      answered(h.send(h.exportDaily)),
		cbCreateAppointment: answered(h.send(h.engine.BeginAppointment)),
		cbSearchClient:      answered(h.edit(h.engine.BeginSearch)),
	}
	for _, role := range domain.Roles {
		callbacks[string(role)] = answered(h.edit(h.selectRole(role)))
	}
	for key, handler := range callbacks {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}
	return nil
}

// Active reports whether the sender is inside a flow.
func (h *Handlers) Active(ctx context.Context, userID int64) bool {
	return h.engine.Active(ctx, userID)
}

// HandleText passes a free-text message to the sender's flow.
func (h *Handlers) HandleText(c tele.Context) error {
	return h.send(func(ctx context.Context, userID int64) ([]conversation.Reply, error) {
		return h.engine.HandleText(ctx, userID, c.Text())
	})(c)
}

func (h *Handlers) start(c tele.Context) error {
	name := ""
	if u := c.Sender(); u != nil {
		name = u.Username
		if name == "" {
			name = u.FirstName
		}
	}
	return h.send(func(ctx context.Context, userID int64) ([]conversation.Reply, error) {
		return h.engine.Start(ctx, userID, name)
	})(c)
}

func (h *Handlers) report(kind conversation.ReportKind) action {
	return func(ctx context.Context, _ int64) ([]conversation.Reply, error) {
		return h.engine.Report(ctx, kind)
	}
}

func (h *Handlers) exportDaily(ctx context.Context, _ int64) ([]conversation.Reply, error) {
	return h.engine.ExportDaily(ctx)
}

func (h *Handlers) selectRole(role domain.Role) action {
	return func(ctx context.Context, userID int64) ([]conversation.Reply, error) {
		return h.engine.SelectRole(ctx, userID, role)
	}
}

// static serves a reply that needs neither the user nor the store.
// With edit set, the pressed message is replaced.
func (h *Handlers) static(fn func() []conversation.Reply, edit ...bool) tele.HandlerFunc {
	run := func(context.Context, int64) ([]conversation.Reply, error) { return fn(), nil }
	if len(edit) > 0 && edit[0] {
		return h.edit(run)
	}
	return h.send(run)
}

// send delivers every reply as a new message.
func (h *Handlers) send(fn action) tele.HandlerFunc {
	return h.serve(fn, false)
}

// edit replaces the pressed message with the first reply.
func (h *Handlers) edit(fn action) tele.HandlerFunc {
	return h.serve(fn, true)
}

func (h *Handlers) serve(fn action, edit bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return nil
		}
		replies, err := fn(tghelpers.BuildContext(c), user.ID)
		if sendErr := deliver(c, replies, edit); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	}
}

// answered acknowledges the button press before running next.
func answered(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() != nil {
			if err := c.Respond(); err != nil {
				logger.Debug(tghelpers.BuildContext(c), logger.CompTG, "callback.respond",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
		}
		return next(c)
	}
}

// deliver sends replies in order. Only the first one may edit the message
// that carried the pressed button.
func deliver(c tele.Context, replies []conversation.Reply, edit bool) error {
	for i, r := range replies {
		var err error
		switch {
		case r.Document != nil:
			err = tghelpers.SendDocument(c, r.Document.Name, r.Text, bytes.NewReader(r.Document.Data))
		case edit && i == 0 && c.Callback() != nil:
			err = tghelpers.EditOrSendHTML(c, r.Text, markupFor(r.Keyboard))
		default:
			err = tghelpers.SendHTML(c, r.Text, markupFor(r.Keyboard))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
