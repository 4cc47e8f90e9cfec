package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	launcherLogName = "launcher.log"
	agentLogName    = "agent.log"
)

// LogOptions configures NewLogger.
type LogOptions struct {
	Dir    string    // Log directory; launcher.log is appended there
	Debug  bool      // Log at debug level instead of info
	Mirror io.Writer // Optional second destination in text format, e.g. stderr
}

// NewLogger creates a structured logger that appends JSON records to
// <Dir>/launcher.log and, if Mirror is set, text records to Mirror.
// The returned func closes the log file.
func NewLogger(opts LogOptions) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(opts.Dir, launcherLogName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", logPath, err)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	if opts.Mirror != nil {
		handler = fanoutHandler{handler, slog.NewTextHandler(opts.Mirror, &slog.HandlerOptions{Level: level})}
	}
	return slog.New(handler), func() { _ = file.Close() }, nil
}

// AgentLogPath returns the file agent output is appended to.
func AgentLogPath(logsDir string) string {
	return filepath.Join(logsDir, agentLogName)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fanoutHandler sends each record to every handler enabled for its level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(handlers))
	for i, h := range handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(handlers))
	for i, h := range handlers {
		out[i] = h.WithGroup(name)
	}
	return out
}
