package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/cache"
	"github.com/phrazzld/taskboard-api/internal/platform/gemini"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// application holds the shared dependencies of the server so they can be
// wired once and cleaned up together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService       auth.JWTService
	userService      service.UserService
	taskService      service.TaskService
	categoryService  service.CategoryService
	tagService       service.TagService
	analyticsService service.AnalyticsService
	jobService       service.JobService

	jobRunner *job.Runner

	// closers are released in reverse order by cleanup
	closers []io.Closer
}

// newApplication wires stores, services and the job runner. The runner is
// started here so jobs left over from a previous run are recovered before
// the first request arrives.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	categoryStore := postgres.NewPostgresCategoryStore(db, logger)
	tagStore := postgres.NewPostgresTagStore(db, logger)
	jobStore := postgres.NewPostgresJobStore(db, logger)

	statsCache := app.setupStatsCache(ctx)

	var suggester service.SubtaskSuggester
	if cfg.LLM.GeminiAPIKey != "" {
		s, err := gemini.NewSuggester(ctx, cfg.LLM, logger.With(slog.String("component", "llm_suggester")))
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize LLM suggester: %w", err)
		}
		suggester = s
		logger.Info("LLM suggester initialized", slog.String("model", cfg.LLM.ModelName))
	} else {
		logger.Info("No Gemini API key configured, subtask suggestions disabled")
	}

	registry := job.NewRegistry()
	job.RegisterDefaults(registry, job.Deps{
		Tasks:               taskStore,
		Users:               userStore,
		Categories:          categoryStore,
		Tags:                tagStore,
		ExportDir:           cfg.Jobs.ExportDir,
		ExportFormat:        cfg.Jobs.ExportFormat,
		ReminderConcurrency: cfg.Jobs.ReminderConcurrency,
		Logger:              logger,
	})

	app.jobRunner = job.NewRunner(jobStore, registry, job.RunnerConfig{
		WorkerCount:           cfg.Jobs.WorkerCount,
		QueueSize:             cfg.Jobs.QueueSize,
		MaxAttempts:           cfg.Jobs.MaxAttempts,
		RetryBaseDelay:        cfg.Jobs.RetryBaseDelay(),
		StuckJobAge:           cfg.Jobs.StuckJobAge(),
		StuckJobCheckInterval: time.Minute,
		PendingJobAge:         time.Minute,
	}, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(job.NewEventHandler(registry, app.jobRunner, logger))

	app.jobService = service.NewJobService(emitter, app.jobRunner, logger)
	app.userService = service.NewUserService(userStore, auth.NewBcryptVerifier(), db, logger)
	app.categoryService = service.NewCategoryService(categoryStore, taskStore, db, logger)
	app.tagService = service.NewTagService(tagStore, logger)
	app.taskService = service.NewTaskService(service.TaskServiceDeps{
		Tasks:      taskStore,
		Categories: categoryStore,
		Tags:       tagStore,
		DB:         db,
		Cache:      statsCache,
		Suggester:  suggester,
		Logger:     logger,
	})
	app.analyticsService = service.NewAnalyticsService(service.AnalyticsServiceDeps{
		Tasks:      taskStore,
		Categories: categoryStore,
		Cache:      statsCache,
		Scheduler:  app.jobService,
		Logger:     logger,
	})

	if err := app.jobRunner.Start(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStatsCache connects to redis when configured. A connection failure
// is logged and the server runs without a cache.
func (app *application) setupStatsCache(ctx context.Context) cache.StatsCache {
	cfg := app.config.Redis
	if cfg.URL == "" {
		app.logger.Info("No redis URL configured, stats cache disabled")
		return cache.Noop{}
	}

	c, err := cache.Connect(ctx, cfg.URL, cfg.StatsTTL(), app.logger)
	if err != nil {
		app.logger.Warn("Stats cache unavailable, continuing without it",
			slog.String("error", err.Error()))
		return cache.Noop{}
	}
	app.closers = append(app.closers, c)
	app.logger.Info("Stats cache connected", slog.Duration("ttl", cfg.StatsTTL()))
	return c
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the job runner and releases connections.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("Error closing resource", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
