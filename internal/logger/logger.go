// Package logger wraps zerolog.Logger with the constructors used across
// eckodoo: a process logger for cmd entrypoints, a no-op logger for tests
// and library defaults, and context helpers for request-scoped loggers.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// New builds a logger for the given component writing JSON to w.
// level is parsed with zerolog.ParseLevel; unknown values fall back to info.
func New(w io.Writer, component, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(w).Level(lvl).With().
		Str("component", component).
		Timestamp().
		Logger()

	return &Logger{l}
}

// NewConsole builds a human readable logger on stderr, used by cmd/api
// when running in a terminal.
func NewConsole(component, level string) *Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, component, level)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Child returns a logger tagged with an extra component-scoped field.
func (l *Logger) Child(key, value string) *Logger {
	return &Logger{l.With().Str(key, value).Logger()}
}

// FromContext returns the logger attached to ctx via zerolog's WithContext.
// When none is attached zerolog's default context logger is returned, so the
// result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest is FromContext for an HTTP request.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
