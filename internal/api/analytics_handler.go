package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// AnalyticsHandler serves the dashboard and analytics views.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if analytics == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("analytics cannot be nil for AnalyticsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger.With(slog.String("component", "analytics_handler")),
		now:       time.Now,
	}
}

// Dashboard handles GET /dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	dashboard, err := h.analytics.Dashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}

	now := h.now()
	shared.RespondWithJSON(w, r, http.StatusOK, DashboardResponse{
		Overdue:    toTaskResponses(dashboard.Overdue, now),
		DueToday:   toTaskResponses(dashboard.DueToday, now),
		Stats:      dashboard.Stats,
		Categories: dashboard.Categories,
	})
}

// Report handles GET /analytics.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	report, err := h.analytics.Report(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build analytics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
