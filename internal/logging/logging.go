// Package logging configures the process-wide slog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ErrUnknownFormat = errors.New("unknown log format")

// ParseLevel maps debug, info, warn and error (case-insensitive) to slog
// levels. Anything else is info.
func ParseLevel(level string) slog.Level {
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

// New builds a logger tagged with module and version. Debug loggers include
// source locations.
func New(w io.Writer, module, version, level, format string) (*slog.Logger, error) {
	lvl := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return slog.New(handler).With("module", module, "version", version), nil
}

// SetDefault installs a logger built by New as the slog default.
func SetDefault(w io.Writer, module, version, level, format string) (*slog.Logger, error) {
	logger, err := New(w, module, version, level, format)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	return logger, nil
}
