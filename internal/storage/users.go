package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// UsernameExists reports whether a user with exactly this username is registered.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	start := time.Now()
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	observe(ctx, "users.exists", start, err)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// InsertUser stores a new user unless the username is already taken.
// The check and the insert are one statement, so concurrent registrations
// of the same username cannot both succeed.
func (r *Repository) InsertUser(ctx context.Context, u domain.User) error {
	start := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING`,
		u.Username, u.PasswordHash, string(u.Role))
	if err != nil {
		observe(ctx, "users.insert", start, err)
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	observe(ctx, "users.insert", start, err, slog.String("role", string(u.Role)))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return ErrUsernameOccupied
	}
	return nil
}
