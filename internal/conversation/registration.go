package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/internal/domain"
	"github.com/m3rciful/autoservice-bot/internal/storage"
)

type usernameInput struct {
	Username string `validate:"required,max=64"`
}

type passwordInput struct {
	Password string `validate:"required,max=72"`
}

// bcrypt rejects longer passwords.
const maxPasswordBytes = 72

// BeginRegistration starts the registration flow.
func (e *Engine) BeginRegistration(ctx context.Context, userID int64) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	if err := e.transition(ctx, userID, AwaitingUsername{}); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return one(textAskUsername, KeyboardCancel), nil
}

func (e *Engine) registerUsername(ctx context.Context, userID int64, text string) ([]Reply, error) {
	username := strings.TrimSpace(text)
	if err := e.validate.Struct(usernameInput{Username: username}); err != nil {
		return one(textBadUsername, KeyboardCancel), nil
	}

	taken, err := e.repo.UsernameExists(ctx, username)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompUsers, "users.check", err)
	}
	if taken {
		logger.Info(ctx, logger.CompUsers, "users.username_taken",
			slog.String("outcome", "skip"),
			slog.String("username", logger.SanitizeLimit(username, 64)),
		)
		return one(textUsernameTaken, KeyboardCancel), nil
	}

	if err := e.transition(ctx, userID, AwaitingPassword{Username: username}); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return one(textAskPassword, KeyboardCancel), nil
}

func (e *Engine) registerPassword(ctx context.Context, userID int64, step AwaitingPassword, text string) ([]Reply, error) {
	password := strings.TrimSpace(text)
	if err := e.validate.Struct(passwordInput{Password: password}); err != nil || len(password) > maxPasswordBytes {
		return one(textBadPassword, KeyboardCancel), nil
	}
	next := AwaitingRole{Username: step.Username, Password: password}
	if err := e.transition(ctx, userID, next); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return one(textChooseRole, KeyboardRoles), nil
}

// SelectRole completes registration with the pressed role button.
func (e *Engine) SelectRole(ctx context.Context, userID int64, role domain.Role) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	step, err := e.Step(ctx, userID)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.load", err)
	}
	pending, ok := step.(AwaitingRole)
	if !ok {
		return one(textNoRegistration, KeyboardMenu), nil
	}

	hash, err := e.hash(pending.Password)
	if err != nil {
		return e.abandon(ctx, userID, logger.CompUsers, "users.hash", err)
	}
	user := domain.User{Username: pending.Username, PasswordHash: hash, Role: role}
	if err := e.repo.InsertUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUsernameOccupied) {
			// Lost the race against another registration; the flow ends anyway.
			return e.abandon(ctx, userID, logger.CompUsers, "users.insert", errUsernameTaken)
		}
		return e.abandon(ctx, userID, logger.CompUsers, "users.insert", err)
	}

	if err := e.transition(ctx, userID, Idle{}); err != nil {
		logger.Warn(ctx, logger.CompSession, "session.clear",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	logger.Info(ctx, logger.CompUsers, "users.registered",
		slog.String("status", "ok"),
		slog.String("username", logger.SanitizeLimit(user.Username, 64)),
		slog.String("role", string(role)),
	)
	return one(textRegistered, KeyboardMenu), nil
}

var errUsernameTaken = errors.New("данный username уже занят")
