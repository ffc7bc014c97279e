// Package logging provides the structured diagnostic logger for ticontrol.
//
// The terminal belongs to the UI, so all records go to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/five82/ticontrol/internal/config"
)

// Logger wraps slog.Logger with ticontrol defaults.
//
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a Logger writing text records to the configured rotating file.
//
// Default fields service and version are attached to every record. When the
// log directory cannot be created the logger falls back to discarding output
// so a read-only home never prevents the client from starting.
func New(cfg config.LogConfig, version string) *Logger {
	var (
		output io.Writer = io.Discard
		closer io.Closer
	)
	if path := strings.TrimSpace(cfg.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			rotator := &lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
			}
			output = rotator
			closer = rotator
		}
	}
	return newWithWriter(output, closer, cfg.Level, version)
}

func newWithWriter(w io.Writer, closer io.Closer, level, version string) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}).
		WithAttrs([]slog.Attr{
			slog.String("service", "ticontrol"),
			slog.String("version", version),
		})
	return &Logger{Logger: slog.New(handler), closer: closer}
}

// parseLevel converts a string log level to slog.Level.
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// With returns a new Logger with additional default attributes.
//
//	wsLogger := logger.With("component", "websocket")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), closer: l.closer}
}

// Close releases the underlying log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *Logger {
	return newWithWriter(io.Discard, nil, "error", "test")
}
