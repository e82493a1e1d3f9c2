package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is a thread-safe buffer for capturing log output in tests.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffer contents.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Entries parses the buffer as one JSON log entry per line.
func (b *TestLogBuffer) Entries() ([]map[string]any, error) {
	lines := strings.Split(b.String(), "\n")
	entries := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NewTestLogger returns a debug-level JSON logger writing into a buffer. It
// does not touch slog.Default, so it is safe in parallel tests.
func NewTestLogger(t *testing.T) (*TestLogBuffer, *slog.Logger) {
	t.Helper()
	buf := &TestLogBuffer{}
	return buf, slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
