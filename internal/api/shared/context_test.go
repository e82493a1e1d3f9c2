package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	id := GetTraceID(traced)
	assert.Len(t, id, 32)
	_, err := hex.DecodeString(id)
	require.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "parent context is unchanged")
	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 42)))
}

func TestNewTraceID_Fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reader io.Reader
	}{
		{name: "reader error", reader: failingReader{}},
		{name: "short read", reader: io.LimitReader(rand.Reader, TraceIDLength/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id := newTraceID(tt.reader)
			assert.Len(t, id, 32)
			_, err := hex.DecodeString(id)
			assert.NoError(t, err)
		})
	}
}

func TestUserIDContext(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	got, ok := UserIDFromContext(WithUserID(context.Background(), userID))
	require.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)
}
