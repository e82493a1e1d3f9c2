package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/platform/cache"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Dashboard is the landing view of a user.
type Dashboard struct {
	Overdue    []*domain.Task            `json:"overdue"`
	DueToday   []*domain.Task            `json:"due_today"`
	Stats      analytics.Stats           `json:"stats"`
	Categories []analytics.CategoryStats `json:"categories"`
}

// Report is the analytics view of a user.
type Report struct {
	Stats                analytics.Stats           `json:"stats"`
	Categories           []analytics.CategoryStats `json:"categories"`
	Trend                []analytics.DailyCount    `json:"trend"`
	PriorityDistribution map[domain.Priority]int   `json:"priority_distribution"`

	// MetricsJobID identifies the background metrics job scheduled with the
	// report. It is uuid.Nil if scheduling failed.
	MetricsJobID uuid.UUID `json:"metrics_job_id"`
}

// MetricsScheduler schedules the metrics job. JobService implements it.
type MetricsScheduler interface {
	ScheduleMetrics(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// AnalyticsService computes dashboards and reports.
type AnalyticsService interface {
	// Stats returns aggregate task stats, served from the cache when possible.
	Stats(ctx context.Context, userID uuid.UUID) (analytics.Stats, error)

	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)

	// Report builds the analytics view and schedules the metrics job.
	Report(ctx context.Context, userID uuid.UUID) (*Report, error)
}

// AnalyticsServiceDeps holds the collaborators of the analytics service.
// Cache, Scheduler, Now and Logger are optional.
type AnalyticsServiceDeps struct {
	Tasks      store.TaskStore
	Categories store.CategoryStore
	Cache      cache.StatsCache
	Scheduler  MetricsScheduler
	Now        func() time.Time
	Logger     *slog.Logger
}

type analyticsServiceImpl struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	cache      cache.StatsCache
	scheduler  MetricsScheduler
	now        func() time.Time
	group      singleflight.Group
	logger     *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(deps AnalyticsServiceDeps) AnalyticsService {
	if deps.Tasks == nil || deps.Categories == nil {
		panic("analytics service stores cannot be nil")
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &analyticsServiceImpl{
		tasks:      deps.Tasks,
		categories: deps.Categories,
		cache:      deps.Cache,
		scheduler:  deps.Scheduler,
		now:        deps.Now,
		logger:     deps.Logger.With(slog.String("component", "analytics_service")),
	}
}

func (s *analyticsServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (analytics.Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		log.Warn("stats cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		return *cached, nil
	}

	// Concurrent misses for the same user share one computation, detached
	// from any single caller's cancellation.
	ch := s.group.DoChan(userID.String(), func() (interface{}, error) {
		return s.computeStats(context.WithoutCancel(ctx), userID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return analytics.Stats{}, NewServiceError("analytics", "stats", ctx.Err())
	}
	if res.Err != nil {
		return analytics.Stats{}, NewServiceError("analytics", "stats", res.Err)
	}
	if res.Shared {
		log.Debug("stats computation shared", slog.String("user_id", userID.String()))
	}
	return res.Val.(analytics.Stats), nil
}

// computeStats aggregates the user's tasks and caches the result. The cache
// version is read before the tasks so a concurrent invalidation makes the
// write a no-op instead of caching outdated stats.
func (s *analyticsServiceImpl) computeStats(ctx context.Context, userID uuid.UUID) (analytics.Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	version, verErr := s.cache.Version(ctx, userID)
	if verErr != nil {
		log.Warn("stats cache version read failed", slog.String("error", verErr.Error()))
	}

	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return analytics.Stats{}, err
	}
	stats := analytics.Aggregate(tasks, s.now())

	if verErr == nil {
		if err := s.cache.Set(ctx, userID, version, stats); err != nil {
			log.Warn("stats cache write failed", slog.String("error", err.Error()))
		}
	}
	return stats, nil
}

func (s *analyticsServiceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	tasks, categories, err := s.load(ctx, userID)
	if err != nil {
		return nil, NewServiceError("analytics", "dashboard", err)
	}
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	overdue := analytics.Filter(tasks, analytics.Overdue(now))
	dueToday := analytics.Filter(tasks, analytics.DueToday(now), analytics.Pending)

	return &Dashboard{
		Overdue:    analytics.SortTasks(overdue, analytics.SortByDueDate, analytics.Ascending, nil),
		DueToday:   analytics.SortTasks(dueToday, analytics.SortByDueDate, analytics.Ascending, nil),
		Stats:      stats,
		Categories: analytics.CategoryBreakdown(categories, tasks),
	}, nil
}

func (s *analyticsServiceImpl) Report(ctx context.Context, userID uuid.UUID) (*Report, error) {
	tasks, categories, err := s.load(ctx, userID)
	if err != nil {
		return nil, NewServiceError("analytics", "report", err)
	}

	now := s.now()
	report := &Report{
		Stats:                analytics.Aggregate(tasks, now),
		Categories:           analytics.CategoryBreakdown(categories, tasks),
		Trend:                analytics.CompletionTrend(tasks, now, analytics.DefaultTrendDays),
		PriorityDistribution: analytics.CountByPriority(tasks),
	}

	if s.scheduler != nil {
		jobID, err := s.scheduler.ScheduleMetrics(ctx, userID)
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Warn("failed to schedule metrics job",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		report.MetricsJobID = jobID
	}
	return report, nil
}

func (s *analyticsServiceImpl) load(ctx context.Context, userID uuid.UUID) ([]*domain.Task, []*domain.Category, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return tasks, categories, nil
}
