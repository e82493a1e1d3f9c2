package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"`
	TraceID string `json:"trace_id,omitempty"`
}

// ResponseOption customizes error response logging.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel logs a 4xx response at WARN instead of DEBUG.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to encode JSON response", slog.String("error", redact.Error(err)))
	}
}

// RespondWithError writes a JSON error body carrying the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("sending error response",
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	RespondWithJSON(w, r, status, ErrorResponse{Error: message, Code: status, TraceID: traceID})
}

// RespondWithErrorAndLog writes userMessage to the client and logs the
// redacted err. 5xx responses log at ERROR, 429 and elevated 4xx at WARN,
// everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	attrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	case o.elevateLogLevel && status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	logger.FromContextOrDefault(r.Context(), slog.Default()).
		LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, ErrorResponse{Error: userMessage, Code: status, TraceID: traceID})
}
