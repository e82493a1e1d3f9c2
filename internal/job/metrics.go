package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// MetricsResult is the output of a metrics job.
type MetricsResult struct {
	Stats analytics.Stats        `json:"stats"`
	Trend []analytics.DailyCount `json:"trend"`
}

// MetricsJob computes a user's stats and completion trend and stores them
// as the job result. It does not write the stats cache.
type MetricsJob struct {
	base
	deps   *Deps
	result *MetricsResult
}

// NewMetricsJob builds a metrics job from its record.
func NewMetricsJob(rec *Record, deps *Deps) (*MetricsJob, error) {
	p, err := decodeUserPayload(rec)
	if err != nil {
		return nil, err
	}
	b := newBase(rec)
	b.userID = p.UserID
	return &MetricsJob{base: b, deps: deps}, nil
}

// Execute implements Job.
func (j *MetricsJob) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, j.deps.Logger).With(
		slog.String("job_id", j.id.String()),
		slog.String("user_id", j.userID.String()))

	tasks, err := j.deps.Tasks.ListByUser(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	now := j.deps.now()
	stats := analytics.Aggregate(tasks, now)
	trend := analytics.CompletionTrend(tasks, now, analytics.DefaultTrendDays)
	j.result = &MetricsResult{Stats: stats, Trend: trend}

	log.Info("user metrics computed",
		slog.Int("total", stats.Total),
		slog.Int("completed", stats.Completed),
		slog.Int("overdue", stats.Overdue),
		slog.Float64("completion_rate", stats.CompletionRate))
	return nil
}

// Result implements Resulter.
func (j *MetricsJob) Result() ([]byte, error) {
	return json.Marshal(j.result)
}
