package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Fields map[string]any

const masked = "******"

var sensitiveKeys = map[string]struct{}{
	"pin":                  {},
	"transactionpin":       {},
	"transaction_pin":      {},
	"transactionpinhash":   {},
	"transaction_pin_hash": {},
	"channelkey":           {},
	"channel_key":          {},
	"password":             {},
	"databasedsn":          {},
	"database_dsn":         {},
	"authorization":        {},
}

var (
	mu  sync.RWMutex
	out = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
)

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

func Info(message string, fields Fields) {
	write("INFO", message, fields)
}

func Warn(message string, fields Fields) {
	write("WARN", message, fields)
}

func Error(message string, err error, fields Fields) {
	base := Fields{}
	for k, v := range fields {
		base[k] = v
	}
	if err != nil {
		base["error"] = err.Error()
	}

	write("ERROR", message, base)
}

func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func write(level, message string, fields Fields) {
	mu.RLock()
	defer mu.RUnlock()
	out.Printf("%s %s %s", level, message, fieldsJSON(fields))
}

func fieldsJSON(fields Fields) string {
	if fields == nil {
		fields = Fields{}
	}

	b, err := json.Marshal(SanitizePayload(fields))
	if err != nil {
		return `{}`
	}

	return string(b)
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = masked
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
