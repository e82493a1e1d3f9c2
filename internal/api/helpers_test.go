package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// withUser injects an authenticated user the way the auth middleware does.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
		})
	}
}

// serve sends a request through router and returns the recorded response.
func serve(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	_, log := logger.NewTestLogger(t)
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRouter(userID uuid.UUID) chi.Router {
	r := chi.NewRouter()
	if userID != uuid.Nil {
		r.Use(withUser(userID))
	}
	return r
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleTask(userID uuid.UUID, title string) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusTodo,
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	}
}
