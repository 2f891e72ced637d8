package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lmittmann/tint"
)

type Logger = *slog.Logger

func NewLogger() Logger {
	return New(os.Stderr, slog.LevelDebug)
}

// New builds a tint-formatted logger writing to w.
func New(w io.Writer, level slog.Leveler) Logger {
	return slog.New(newTintHandler(w, level))
}

// NewLoggerWithSentry initialises the Sentry client for dsn and returns a
// logger that reports Error records carrying an "error" attribute.
// The returned flush func should be deferred by the caller.
func NewLoggerWithSentry(dsn string) (Logger, func(), error) {
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, nil, fmt.Errorf("init sentry: %w", err)
	}
	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(NewSentryHandler(newTintHandler(os.Stderr, slog.LevelDebug))), flush, nil
}

func newTintHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    w != os.Stderr,
	})
}
