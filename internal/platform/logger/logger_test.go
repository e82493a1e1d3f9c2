package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		got, ok := ParseLevel(tc.input)
		assert.Equal(t, tc.want, got, tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
	}
}

func TestSetupWritesJSONAtLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l := setup(buf, "warn")
	l.Info("hidden")
	l.Warn("shown", slog.String("key", "value"))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Same(t, l, slog.Default())
}

func TestSetupWarnsOnInvalidLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	setup(buf, "chatty")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chatty", entries[0]["configured_level"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	_, l := NewTestLogger(t)
	fallback := slog.New(slog.NewTextHandler(&TestLogBuffer{}, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, l, FromContextOrDefault(ctx, fallback))
}
