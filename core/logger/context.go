package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyLogger ctxKey = iota
	keyRID
	keyUpdateID
	keyUserID
	keyChatID
	keyHandler
)

func withValue[T comparable](ctx context.Context, key ctxKey, v T) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	var zero T
	if v == zero {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueFrom[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithLogger stores logg in ctx so that Event and friends pick it up.
func WithLogger(ctx context.Context, logg *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logg == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, logg)
}

// FromContext returns the logger stored in ctx, falling back to L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := valueFrom[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withValue(ctx, keyRID, rid)
}

// RIDFrom returns the correlation id or "".
func RIDFrom(ctx context.Context) string {
	return valueFrom[string](ctx, keyRID)
}

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = withValue(ctx, keyUpdateID, updateID)
	ctx = withValue(ctx, keyUserID, userID)
	return withValue(ctx, keyChatID, chatID)
}

// WithHandler records which bot handler is serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	return withValue(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name or "".
func HandlerFrom(ctx context.Context) string {
	return valueFrom[string](ctx, keyHandler)
}

// UserIDFrom returns the Telegram user id or 0.
func UserIDFrom(ctx context.Context) int64 {
	return valueFrom[int64](ctx, keyUserID)
}

// ChatIDFrom returns the chat id or 0.
func ChatIDFrom(ctx context.Context) int64 {
	return valueFrom[int64](ctx, keyChatID)
}

// UpdateIDFrom returns the update id or 0.
func UpdateIDFrom(ctx context.Context) int {
	return valueFrom[int](ctx, keyUpdateID)
}
