package logger

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]any

var sensitiveKeys = map[string]struct{}{
	"password":       {},
	"redispassword":  {},
	"redis_password": {},
	"databasedsn":    {},
	"database_dsn":   {},
	"authorization":  {},
}

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(zap.NewNop())
}

// Configure installs a JSON zap logger for the given environment. Development
// defaults to debug level, everything else to info, unless level overrides it.
func Configure(environment string, level string) error {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(strings.TrimSpace(environment), "development") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	if strings.TrimSpace(level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(strings.TrimSpace(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	base.Store(built)
	return nil
}

// Replace swaps the underlying logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	prev := base.Swap(l)
	return func() {
		base.Store(prev)
	}
}

func Sync() {
	_ = base.Load().Sync()
}

func Debug(message string, fields Fields) {
	base.Load().Debug(message, toZap(fields)...)
}

func Info(message string, fields Fields) {
	base.Load().Info(message, toZap(fields)...)
}

func Warn(message string, fields Fields) {
	base.Load().Warn(message, toZap(fields)...)
}

func Error(message string, err error, fields Fields) {
	zapFields := toZap(fields)
	if err != nil {
		zapFields = append(zapFields, zap.String("error", err.Error()))
	}

	base.Load().Error(message, zapFields...)
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

func toZap(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		if isSensitiveKey(key) {
			out = append(out, zap.String(key, "******"))
			continue
		}
		switch typed := value.(type) {
		case string:
			out = append(out, zap.String(key, typed))
		case error:
			out = append(out, zap.String(key, typed.Error()))
		case fmt.Stringer:
			out = append(out, zap.Stringer(key, typed))
		default:
			out = append(out, zap.Any(key, SanitizePayload(typed)))
		}
	}

	return out
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = "******"
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
