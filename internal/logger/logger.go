// Package logger holds the process-wide structured logger used by the
// segment and allocator packages.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// AllocEnv turns on per-allocation debug lines when set to any value.
const AllocEnv = "WGDB_LOG_ALLOC"

// LogAlloc is read once at startup; the allocator checks it before building
// per-call log attributes.
var LogAlloc = os.Getenv(AllocEnv) != ""

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // JSON lines instead of logfmt-style text
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if LogAlloc && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
		return
	}
	L = slog.New(slog.NewTextHandler(w, hopts))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is LevelInfo.
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

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
