// Package logger builds the application's slog loggers.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel converts a config-file level string to a slog.Level.
// Unknown strings fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewLogger creates a logger writing to stderr in the given format
// ("text" or "json") at the given level.
func NewLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// NewDefaultLogger creates a text logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(level, "text")
}
