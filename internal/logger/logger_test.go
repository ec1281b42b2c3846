package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("should return logger from context when present", func(t *testing.T) {
		expected := NewForTests()
		ctx := ContextWithLogger(context.Background(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("should return default logger when context carries none", func(t *testing.T) {
		actual := FromContext(context.Background())

		assert.Equal(t, Default(), actual)
	})

	t.Run("should ignore values of the wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerCtxKey, "not a logger")

		assert.Equal(t, Default(), FromContext(ctx))
	})
}

func TestForRequest(t *testing.T) {
	t.Run("should tag the component logger with the request id", func(t *testing.T) {
		var buf bytes.Buffer
		base := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true}).With("component", "cache")
		ctx := ContextWithRequestID(context.Background(), "req-42")

		ForRequest(ctx, base).Error("upstream fetch failed")

		assert.Contains(t, buf.String(), `"request_id":"req-42"`)
		assert.Contains(t, buf.String(), `"component":"cache"`)
	})

	t.Run("should return base untouched outside a request", func(t *testing.T) {
		base := NewForTests()
		assert.Equal(t, base, ForRequest(context.Background(), base))
	})

	t.Run("should fall back to the context logger", func(t *testing.T) {
		reqLog := NewForTests()
		ctx := ContextWithLogger(context.Background(), reqLog)
		assert.Equal(t, reqLog, ForRequest(ctx, nil))
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})

	l.With("component", "cache").Info("recipe cached", "recipe_id", "716429")
	l.Debug("suppressed")

	out := buf.String()
	assert.Contains(t, out, `"msg":"recipe cached"`)
	assert.Contains(t, out, `"recipe_id":"716429"`)
	assert.Contains(t, out, `"component":"cache"`)
	assert.NotContains(t, out, "suppressed")
}
