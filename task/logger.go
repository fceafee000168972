package task

import (
	"context"
	"log/slog"
)

// Logger wraps slog.Logger with the named log points spec.md §7 calls
// for at the distributed fan-out/reduce/cancel/invoke boundaries.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps base. A nil base falls back to slog.Default().
func NewLogger(base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}
	return &Logger{Logger: base}
}

// LogFanout logs a distributed fan-out split: the node range being
// divided and the two peers the halves were dispatched to (-1 if that
// half wasn't dispatched, i.e. at the edge of the range).
func (l *Logger) LogFanout(ctx context.Context, nlo, nhi, leftPeer, ritePeer int) {
	l.DebugContext(ctx, "fan-out split",
		"nlo", nlo, "nhi", nhi, "leftPeer", leftPeer, "ritePeer", ritePeer)
}

// LogReduce logs a pairwise reduction between two task results.
func (l *Logger) LogReduce(ctx context.Context, lo, hi int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reduce failed", "lo", lo, "hi", hi, "error", err)
		return
	}
	l.DebugContext(ctx, "reduce completed", "lo", lo, "hi", hi)
}

// LogCancel logs cancellation of a sibling RPC after an error elsewhere
// in the fan-out tree.
func (l *Logger) LogCancel(ctx context.Context, reason error) {
	l.WarnContext(ctx, "cancelling sibling RPC", "reason", reason)
}

// LogInvoke logs completion of a root Invoke call.
func (l *Logger) LogInvoke(ctx context.Context, taskID string, nChunks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "invoke failed", "task_id", taskID, "chunks", nChunks, "error", err)
		return
	}
	l.InfoContext(ctx, "invoke completed", "task_id", taskID, "chunks", nChunks)
}
