// Package logger configures the process-wide slog logger and carries request-scoped fields
// through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

type contextKey string

// RequestIDKey is the context key under which the request ID is stored.
const RequestIDKey contextKey = "request_id"

// Config holds logger configuration.
type Config struct {
	Level    string // debug, info, warn, error
	Format   string // json, text
	Location *time.Location
}

// New builds a logger writing to w. Timestamps are emitted under "ts" in cfg.Location.
func New(w io.Writer, cfg Config) *slog.Logger {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init installs a logger writing to stdout as the slog default.
func Init(cfg Config) {
	slog.SetDefault(New(os.Stdout, cfg))
}

func parseLevel(s string) slog.Level {
	switch s {
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

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// FromContext returns the default logger enriched with values stored in ctx.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		l = l.With("request_id", id)
	}
	return l
}
