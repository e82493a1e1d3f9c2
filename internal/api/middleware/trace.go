package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// TraceHeader echoes the trace ID back to the client.
const TraceHeader = "X-Trace-ID"

// Trace assigns each request a trace ID and a request-scoped logger carrying
// it. Install it before any middleware that logs.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)
			w.Header().Set(TraceHeader, traceID)
			log := base.With(slog.String("trace_id", traceID))

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
		})
	}
}
