// Package conversation implements the bot's dialogs: the main menu, reports
// and the registration, appointment and client search flows. It is free of
// transport code; every operation returns the replies to show.
package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/core/telegram/state"
	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// Repository is the data access the engine depends on.
type Repository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	InsertUser(ctx context.Context, u domain.User) error

	ClientsRanked(ctx context.Context) ([]domain.ClientSpend, error)
	TopServices(ctx context.Context, limit int) ([]domain.ServiceUsage, error)
	BranchIncome(ctx context.Context) ([]domain.BranchIncome, error)
	LowStockParts(ctx context.Context, threshold int) ([]domain.LowStockPart, error)
	OrdersChronological(ctx context.Context) ([]domain.OrderEntry, error)
	DailyReport(ctx context.Context) ([]domain.DailyIncome, error)

	SearchClients(ctx context.Context, substr string) ([]domain.Client, error)
	ListClientsBrief(ctx context.Context) ([]domain.RefItem, error)
	ListBranchesBrief(ctx context.Context) ([]domain.RefItem, error)
	ListServicesBrief(ctx context.Context) ([]domain.RefItem, error)
	CreateAppointment(ctx context.Context, a domain.Appointment) error
}

// Keyboard names the inline keyboard attached to a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMenu
	KeyboardInfo
	KeyboardRoles
	KeyboardCancel
	// KeyboardReport is the main menu plus the spreadsheet export button.
	KeyboardReport
)

// Document is a file attached to a reply.
type Document struct {
	Name string
	Data []byte
}

// Reply is one outgoing message.
type Reply struct {
	Text     string
	Keyboard Keyboard
	Document *Document
}

// Options configure an Engine. Repo and Sessions are required.
type Options struct {
	Repo     Repository
	Sessions state.Store
	// AskService turns the service id into an explicit appointment step.
	AskService bool
	// Hash defaults to bcrypt with the default cost.
	Hash func(password string) (string, error)
	Now  func() time.Time
}

// Engine runs the conversations. It is safe for concurrent use: per-user
// state lives in the session store and steps of one user run one at a time.
type Engine struct {
	locks      userLocks
	repo       Repository
	sessions   state.Store
	validate   *validator.Validate
	askService bool
	hash       func(string) (string, error)
	now        func() time.Time
}

// New builds an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		repo:       opts.Repo,
		sessions:   opts.Sessions,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		askService: opts.AskService,
		hash:       opts.Hash,
		now:        opts.Now,
	}
	if e.hash == nil {
		e.hash = bcryptHash
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func bcryptHash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Step returns the user's current step.
func (e *Engine) Step(ctx context.Context, userID int64) (Step, error) {
	s, err := e.sessions.Load(ctx, userID)
	if err != nil {
		return Idle{}, err
	}
	return decode(s)
}

// Active reports whether the user is inside a flow. Store errors count as idle.
func (e *Engine) Active(ctx context.Context, userID int64) bool {
	step, err := e.Step(ctx, userID)
	if err != nil {
		logger.Warn(ctx, logger.CompSession, "session.load",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	_, idle := step.(Idle)
	return !idle
}

// HandleText feeds a free-text message to the user's current step.
// Outside a flow the text is ignored and no replies are returned.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	step, err := e.Step(ctx, userID)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.load", err)
	}
	switch s := step.(type) {
	case AwaitingUsername:
		return e.registerUsername(ctx, userID, text)
	case AwaitingPassword:
		return e.registerPassword(ctx, userID, s, text)
	case AwaitingRole:
		return one(textChooseRole, KeyboardRoles), nil
	case AwaitingClientID:
		return e.appointmentClient(ctx, userID, text)
	case AwaitingBranchID:
		return e.appointmentBranch(ctx, userID, s, text)
	case AwaitingServiceID:
		return e.appointmentService(ctx, userID, s, text)
	case AwaitingQuery:
		return e.search(ctx, userID, text)
	}
	return nil, nil
}

// Cancel drops any flow in progress.
func (e *Engine) Cancel(ctx context.Context, userID int64) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	step, err := e.Step(ctx, userID)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.load", err)
	}
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return e.fail(ctx, logger.CompSession, "session.clear", err)
	}
	if _, idle := step.(Idle); idle {
		return one(textNothingToCancel, KeyboardMenu), nil
	}
	logger.Info(ctx, logger.CompSession, "flow.cancelled",
		slog.String("outcome", "cancelled"),
		slog.String("state", string(step.state())),
	)
	return one(textCancelled, KeyboardMenu), nil
}

// transition stores the next step. Moving to Idle clears the session.
func (e *Engine) transition(ctx context.Context, userID int64, next Step) error {
	if _, idle := next.(Idle); idle {
		return e.sessions.Clear(ctx, userID)
	}
	return e.sessions.Save(ctx, userID, encode(next))
}

// abandon ends the flow after a failure and reports err to the user.
func (e *Engine) abandon(ctx context.Context, userID int64, component, event string, err error) ([]Reply, error) {
	if clearErr := e.sessions.Clear(ctx, userID); clearErr != nil {
		logger.Warn(ctx, logger.CompSession, "session.clear",
			slog.String("status", "fail"),
			slog.String("err", clearErr.Error()),
		)
	}
	return e.fail(ctx, component, event, err)
}

func (e *Engine) fail(ctx context.Context, component, event string, err error) ([]Reply, error) {
	logger.Warn(ctx, component, event,
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	return one(failureText(err), KeyboardMenu), err
}

func one(text string, kb Keyboard) []Reply {
	return []Reply{{Text: text, Keyboard: kb}}
}
