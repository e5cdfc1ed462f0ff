package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	sink := newAsyncSink([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		sink:   sink,
		format: format,
	})
	return slog.New(h), func() string {
		require.NoError(t, sink.Close())
		return strings.TrimSpace(buf.String())
	}
}

func TestKVKeyOrder(t *testing.T) {
	logg, read := newTestLogger(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	Event(WithLogger(ctx, logg.With("component", CompApp)), "", slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	tokens := strings.Split(read(), " ")
	want := []string{"ts=", "level=INFO", "component=app", "event=test.event", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	require.GreaterOrEqual(t, len(tokens), len(want))
	for i, prefix := range want {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
}

func TestJSONKeyOrderAndComponentOverride(t *testing.T) {
	logg, read := newTestLogger(t, formatJSON)
	ctx := WithLogger(context.Background(), logg.With("component", CompTG))

	Error(ctx, CompAppointments, "appointment.failed",
		slog.String("status", "fail"),
		slog.Int64("client_id", 3),
		slog.String("err", "boom"),
	)

	line := read()
	require.True(t, strings.HasPrefix(line, "{"), line)
	pos := -1
	for _, part := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.appointments"`, `"event":"appointment.failed"`, `"status":"fail"`, `"client_id":3`, `"err":"boom"`} {
		idx := strings.Index(line, part)
		require.NotEqual(t, -1, idx, "%s missing in %s", part, line)
		assert.Greater(t, idx, pos, "%s out of order in %s", part, line)
		pos = idx
	}
}

func TestCompactRID(t *testing.T) {
	t.Run("kv", func(t *testing.T) {
		logg, read := newTestLogger(t, formatKV)
		Info(WithLogger(WithRID(context.Background(), "123:456:789"), logg), "", "rid.test")
		line := read()
		assert.Contains(t, line, "rid="+CompactRID("123:456:789"))
		assert.NotContains(t, line, "rid_full=")
	})
	t.Run("json", func(t *testing.T) {
		logg, read := newTestLogger(t, formatJSON)
		Info(WithLogger(WithRID(context.Background(), "12:34:56"), logg), "", "rid.test")
		line := read()
		assert.Contains(t, line, `"rid":"c.y.1k"`)
		assert.Contains(t, line, `"rid_full":"12:34:56"`)
		assert.Contains(t, line, `"ts_unix_nano"`)
	})
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:3", CompactRID("1:x:3"))
}

func TestDurationsAndOutcome(t *testing.T) {
	logg, read := newTestLogger(t, formatKV)
	Info(WithLogger(context.Background(), logg), CompDB, "db.query",
		slog.Duration("duration", 1499*time.Microsecond),
		slog.Duration("backoff", 2*time.Second),
		slog.String("outcome", "weird"),
		slog.String("empty", ""),
	)
	line := read()
	assert.Contains(t, line, "duration_ms=1")
	assert.Contains(t, line, "backoff_ms=2000")
	assert.NotContains(t, line, "outcome=")
	assert.NotContains(t, line, "empty=")
}

func TestHelpersWithoutLogger(t *testing.T) {
	assert.Nil(t, L)
	assert.NotPanics(t, func() {
		Info(context.Background(), CompApp, "noop")
		Warn(context.TODO(), CompApp, "noop")
	})
	assert.Nil(t, Component(CompDB))
}

func TestSampler(t *testing.T) {
	s := newSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	for ratio, want := range map[string][2]int{
		"1/50": {1, 50},
		"20":   {1, 20},
		"0":    {0, 0},
		"x/y":  {-1, -1},
		"abc":  {-1, -1},
	} {
		keep, every := parseRatio(ratio)
		assert.Equal(t, want, [2]int{keep, every}, ratio)
	}
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "При", SanitizeLimit("Привет", 3))
	assert.Empty(t, SanitizeLimit("x", 0))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithHandler(WithUpdateMeta(context.Background(), 5, 6, 7), "callback.menu")
	assert.Equal(t, 5, UpdateIDFrom(ctx))
	assert.Equal(t, int64(6), UserIDFrom(ctx))
	assert.Equal(t, int64(7), ChatIDFrom(ctx))
	assert.Equal(t, "callback.menu", HandlerFrom(ctx))
	assert.Empty(t, RIDFrom(ctx))
	assert.Equal(t, "5:7:6", BuildRID(5, 7, 6))
}
