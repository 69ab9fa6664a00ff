package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the global logger
type Config struct {
	Level       string // debug, info, warn, error
	Environment string // development, production, test
}

type contextKey string

const loggerKey contextKey = "logger"

// Init configures the global zerolog logger
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.Environment == "development" {
		// Pretty console output while developing locally
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
}

// FromContext returns the request scoped logger or the global one
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
			return l
		}
	}
	return &log.Logger
}

// WithContext attaches a logger to ctx
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// BestEffortFailure records a tolerated side-effect failure. The primary
// operation has already committed, so the error is logged and sent to Sentry
// rather than returned.
func BestEffortFailure(ctx context.Context, err error, msg string, fields map[string]interface{}) {
	FromContext(ctx).Warn().Err(err).Fields(fields).Msg(msg)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("best_effort", "true")
		scope.SetExtras(fields)
		hub.CaptureException(err)
	})
}
