package rconfig

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide structured logger (§2a). Only
// cmd/rask's root command writes to it; the compiler phases take no
// logger. Written to stderr unconditionally, so log lines never
// interleave with a command's output text on stdout.
//
// log/slog is stdlib rather than a corpus dependency: none of the
// example repositories import a structured-logging library (zap,
// logrus, zerolog) anywhere in their module graphs, so there is no
// ecosystem choice grounded in the pack to prefer over the standard
// library's own structured logger.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// PhaseLogger returns a logger scoped to one compiler phase name, so
// every log line it emits is tagged consistently (`phase=typecheck`).
func PhaseLogger(base *slog.Logger, phase string) *slog.Logger {
	return base.With("phase", phase)
}
