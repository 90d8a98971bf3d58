// Package logging builds the service logger and carries request ids.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
	// Dynamic makes the logger follow the process-wide level set by SetLevel,
	// so the level can change at runtime.
	Dynamic bool
}

// New builds the root logger. Format "console" writes human readable lines,
// anything else writes JSON.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level := ParseLevel(opts.Level)
	if opts.Dynamic {
		SetLevel(opts.Level)
		level = zerolog.TraceLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "aquasmart-portal").Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names yield info.
func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// SetLevel sets the process-wide minimum level and returns it.
func SetLevel(value string) zerolog.Level {
	level := ParseLevel(value)
	zerolog.SetGlobalLevel(level)
	return level
}

type contextKey string

const contextKeyRequestID contextKey = "logging.request_id"

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext extracts the request id from ctx.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
