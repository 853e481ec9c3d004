package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})

	Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	Warn().Str("city", "Bangalore").Msg("shown")
	m := decode(t, &buf)
	assert.Equal(t, "shown", m["message"])
	assert.Equal(t, "Bangalore", m["city"])
	assert.Equal(t, "warn", m["level"])
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")

	Ctx(ctx).Info().Msg("hello")
	m := decode(t, &buf)
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)))

	logger.Debug("dropped")
	assert.Zero(t, buf.Len())

	logger.With("service", "http").WithGroup("event").Warn("restarting",
		"attempt", 3,
		"err", errors.New("boom"),
		slog.Group("backoff", "seconds", 1.5),
	)

	m := decode(t, &buf)
	assert.Equal(t, "restarting", m["message"])
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "http", m["service"])
	assert.Equal(t, float64(3), m["event.attempt"])
	assert.Equal(t, "boom", m["event.err"])
	assert.Equal(t, 1.5, m["event.backoff.seconds"])
}
