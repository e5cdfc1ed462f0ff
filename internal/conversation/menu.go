package conversation

import (
	"context"

	"github.com/m3rciful/autoservice-bot/core/logger"
)

// Start greets the user by name and shows the main menu. Any flow in
// progress is dropped.
func (e *Engine) Start(ctx context.Context, userID int64, name string) ([]Reply, error) {
	defer e.locks.acquire(userID)()

	if err := e.sessions.Clear(ctx, userID); err != nil {
		return e.fail(ctx, logger.CompSession, "session.clear", err)
	}
	return one(welcomeText(name), KeyboardMenu), nil
}

// Menu shows the main menu.
func (e *Engine) Menu() []Reply {
	return one(textMenu, KeyboardMenu)
}

// Info shows the statistics sub-menu.
func (e *Engine) Info() []Reply {
	return one(textInfo, KeyboardInfo)
}

// Help lists the bot commands.
func (e *Engine) Help() []Reply {
	return one(textHelp, KeyboardMenu)
}
