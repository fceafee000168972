package mrengine

import (
	"log/slog"
	"os"

	"github.com/distcol/mrengine/task"
)

// Logger is task.Logger: the facade re-exports it so callers configuring
// an Engine via WithLogger never need to import package task themselves.
// Its named log points (LogFanout, LogReduce, LogCancel, LogInvoke) are
// defined once, in task/logger.go, and wired into the actual
// fan-out/reduce/cancel/invoke call sites there.
type Logger = task.Logger

// NewLogger creates a Logger from handler. A nil handler falls back to
// a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return task.NewLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that emits JSON lines to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return task.NewLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// NewTextLogger creates a Logger that emits human-readable lines to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return task.NewLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// NoopLogger discards everything logged through it.
func NoopLogger() *Logger {
	return task.NewLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)})))
}
