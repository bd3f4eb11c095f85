// Package logging builds the slog loggers shared by all player components.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/ivlev/scenecast/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	File   string // optional log file appended to alongside stderr
}

// New constructs a slog logger from options. Unknown levels fall back to
// info rather than failing; logging must never stop a session from starting.
func New(opts Options) (*slog.Logger, error) {
	var w io.Writer = os.Stderr
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return slog.New(handler), nil
}

// NewFromConfig creates a logger using the application config.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return New(Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
}

// NewNop returns a logger that discards everything. Used by tests and
// wiring code that cannot fail.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
