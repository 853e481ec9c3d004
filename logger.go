package dinecluster

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with dinecluster-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a Logger writing JSON lines to w at info level.
// If w is nil, logs go to stderr.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		Logger: zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger(),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level zerolog.Level) *Logger {
	return &Logger{
		Logger: zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(),
	}
}

// NewConsoleLogger creates a Logger that outputs human-readable logs to stderr.
func NewConsoleLogger(level zerolog.Level) *Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return &Logger{
		Logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(l zerolog.Logger) *Logger {
	return &Logger{Logger: l}
}

// WithSession adds the session id field.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{Logger: l.With().Str("session", id).Logger()}
}

// WithK adds a k (cluster count) field.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.With().Int("k", k).Logger()}
}

// LogCluster logs a clustering run.
func (l *Logger) LogCluster(ctx context.Context, rows, k, iterations int, inertia float64, cached bool, err error) {
	if err != nil {
		l.Error().Ctx(ctx).
			Int("rows", rows).
			Int("k", k).
			Err(err).
			Msg("clustering failed")
		return
	}
	l.Info().Ctx(ctx).
		Int("rows", rows).
		Int("k", k).
		Int("iterations", iterations).
		Float64("inertia", inertia).
		Bool("cached", cached).
		Msg("clustering completed")
}

// LogDegenerate logs zero-variance feature columns that were scaled to zero.
func (l *Logger) LogDegenerate(ctx context.Context, columns []string) {
	if len(columns) == 0 {
		return
	}
	l.Warn().Ctx(ctx).
		Strs("columns", columns).
		Msg("zero-variance feature columns scaled to zero")
}

// LogJoin logs a join.
func (l *Logger) LogJoin(ctx context.Context, report JoinReport, err error) {
	if err != nil {
		l.Error().Ctx(ctx).
			Int("ambiguous", len(report.Ambiguous)).
			Err(err).
			Msg("join failed")
		return
	}
	if report.Duplicated > 0 {
		l.Warn().Ctx(ctx).
			Int("rows", report.Rows).
			Int("duplicated", report.Duplicated).
			Int("ambiguous", len(report.Ambiguous)).
			Int("unmatched", report.Unmatched).
			Msg("join duplicated rows for ambiguous names")
		return
	}
	l.Debug().Ctx(ctx).
		Int("rows", report.Rows).
		Int("unmatched", report.Unmatched).
		Msg("join completed")
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, kind string, rows int) {
	l.Debug().Ctx(ctx).
		Str("query", kind).
		Int("rows", rows).
		Msg("query completed")
}
