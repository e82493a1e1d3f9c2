package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ContextKey namespaces values stored in a request context.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's ID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// SetTraceID returns a context carrying a fresh trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID(rand.Reader))
}

// GetTraceID returns the request's trace ID, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user's ID. A missing or nil ID
// reports false.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// newTraceID reads TraceIDLength bytes from r as 32 hex characters. A short
// read falls back to a random UUID with the dashes removed.
func newTraceID(r io.Reader) string {
	b := make([]byte, TraceIDLength)
	if _, err := io.ReadFull(r, b); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}
