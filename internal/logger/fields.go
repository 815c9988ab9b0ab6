package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every session logger.
const (
	FieldBackend = "backend"
	FieldVersion = "version"
)

// Strings turns key/value pairs into zap string fields. Keys and values are
// trimmed, pairs with an empty side are dropped and a trailing key without a
// value is ignored.
func Strings(pairs ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// WithFields attaches fields to logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithSessionFields tags logger with the backend a session talks to and the
// client version. Unknown values are left out.
func WithSessionFields(logger *zap.Logger, backend, version string) *zap.Logger {
	if version == "unknown" {
		version = ""
	}
	return WithFields(logger, Strings(FieldBackend, backend, FieldVersion, version)...)
}
