// Package logging configures structured logging for servicekit services.
// Output format and level come from the LOG_FORMAT (json|console) and
// LOG_LEVEL (debug|info|warn|error) environment variables.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls handler construction. Zero values fall back to the
// LOG_FORMAT and LOG_LEVEL environment variables, then to console/info.
type Options struct {
	Format string // "json" or "console"
	Level  string // "debug", "info", "warn", "error"
	Writer io.Writer
}

// New builds a slog.Logger from the given options.
func New(opts Options) *slog.Logger {
	format := opts.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// Configure builds a logger from the environment and installs it as the
// process default.
func Configure() *slog.Logger {
	logger := New(Options{})
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
