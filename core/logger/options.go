package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/autoservice-bot/core/config"
)

type options struct {
	format      logFormat
	keyOrder    []string
	level       slog.Level
	profile     string
	sampleKeep  int
	sampleEvery int
	trace       bool
	dir         string
	file        string
}

func resolveOptions(cfg *coreconfig.Config) options {
	opts := options{
		format:      formatJSON,
		keyOrder:    append([]string(nil), defaultKeyOrder...),
		level:       slog.LevelInfo,
		profile:     "prod",
		sampleKeep:  1,
		sampleEvery: 50,
		trace:       isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	opts.format = parseFormat(lc.Format, opts.profile)
	opts.level = parseLevel(lc.Level)
	if order := parseKeyOrder(lc.KeysOrder); len(order) > 0 {
		opts.keyOrder = order
	}
	if ratio := strings.TrimSpace(lc.DebugSample); ratio != "" {
		keep, every := parseRatio(ratio)
		if keep < 0 || every < 0 {
			keep, every = 1, 50
		}
		opts.sampleKeep, opts.sampleEvery = keep, every
	}
	opts.dir = strings.TrimSpace(lc.Dir)
	opts.file = strings.TrimSpace(lc.BotFile)
	return opts
}

func parseFormat(raw, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if profile == "debug" || profile == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(p); key != "" {
			order = append(order, key)
		}
	}
	return order
}

// openOutputs always includes stdout. A log file is added when both dir and
// file are configured; failures there are reported on stderr and skipped.
func openOutputs(opts options) ([]io.Writer, []io.Closer) {
	writers := []io.Writer{os.Stdout}
	if opts.dir == "" || opts.file == "" {
		return writers, nil
	}
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		log.Printf("logger: create log dir %s: %v", opts.dir, err)
		return writers, nil
	}
	path := filepath.Join(opts.dir, opts.file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file %s: %v", path, err)
		return writers, nil
	}
	return append(writers, f), []io.Closer{f}
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
