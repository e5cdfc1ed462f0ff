package conversation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/internal/report"
)

// BeginSearch asks for the client search string.
func (e *Engine) BeginSearch(ctx context.Context, userID int64) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	if err := e.transition(ctx, userID, AwaitingQuery{}); err != nil {
		return e.abandon(ctx, userID, logger.CompSession, "session.save", err)
	}
	return one(textAskQuery, KeyboardCancel), nil
}

// search runs the query and ends the flow whatever the outcome.
func (e *Engine) search(ctx context.Context, userID int64, text string) ([]Reply, error) {
	query := strings.TrimSpace(text)
	if err := e.transition(ctx, userID, Idle{}); err != nil {
		logger.Warn(ctx, logger.CompSession, "session.clear",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	matches, err := e.repo.SearchClients(ctx, query)
	if err != nil {
		return e.fail(ctx, logger.CompClients, "clients.search", err)
	}
	logger.Debug(ctx, logger.CompClients, "clients.search",
		slog.String("status", "ok"),
		slog.Int("rows", len(matches)),
	)
	return one(report.Matches(matches), KeyboardMenu), nil
}
