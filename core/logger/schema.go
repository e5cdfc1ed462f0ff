package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// outcomes lists the values accepted for the "outcome" key; others are dropped.
var outcomes = map[string]struct{}{
	"ok":           {},
	"fail":         {},
	"skip":         {},
	"cancelled":    {},
	"rate_limited": {},
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := outcomes[outcome]
	return outcome, ok
}

// defaultKeyOrder fixes the position of well-known keys in every line.
// Keys not listed here follow in alphabetical order.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"op",
	"cb_key",
	"state",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"count",
	"chunks",
	"role",
	"client_id",
	"branch_id",
	"service_id",
	"username",
	"payload",
	"mode",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"attempts",
}
