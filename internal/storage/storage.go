// Package storage implements the data access layer over the shop's PostgreSQL schema.
// Every method issues a single parameterized statement through the shared sqlx pool.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/autoservice-bot/core/logger"
)

var (
	// ErrUsernameOccupied is returned when a user with the same username already exists.
	ErrUsernameOccupied = errors.New("username occupied")
	// ErrForeignKeyViolation is returned when a referenced client, branch or service does not exist.
	ErrForeignKeyViolation = errors.New("foreign key violation")
	// ErrConstraintViolation is returned for any other integrity constraint rejected by the store.
	ErrConstraintViolation = errors.New("constraint violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// Repository executes the shop queries. It is safe for concurrent use.
type Repository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// New wraps an open connection pool.
func New(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// mapError translates PostgreSQL integrity errors into package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pqErr.Message)
		case pgUniqueViolation, pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %s", ErrConstraintViolation, pqErr.Message)
		}
	}
	return err
}

// observe logs the outcome of a single statement.
func observe(ctx context.Context, op string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{
		slog.String("op", op),
		slog.Duration("duration", logger.Took(start)),
	}, attrs...)
	if err != nil {
		attrs = append([]slog.Attr{slog.String("status", "fail")}, attrs...)
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		logger.Warn(ctx, logger.CompDB, "db.query", attrs...)
		return
	}
	if logger.ShouldSampleDebug() {
		attrs = append([]slog.Attr{slog.String("status", "ok")}, attrs...)
		logger.Debug(ctx, logger.CompDB, "db.query", attrs...)
	}
}
