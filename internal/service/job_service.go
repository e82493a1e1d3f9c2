package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// JobStatusReader looks up stored job records. *job.Runner implements it.
type JobStatusReader interface {
	Status(ctx context.Context, id uuid.UUID) (*job.Record, error)
}

// JobService schedules background work for a user and reports on it.
type JobService interface {
	// Schedule requests a job and returns its ID. The job may not have
	// started when Schedule returns.
	Schedule(ctx context.Context, userID uuid.UUID, jobType string, payload job.UserPayload) (uuid.UUID, error)

	ScheduleExport(ctx context.Context, userID uuid.UUID, format string) (uuid.UUID, error)
	ScheduleReminders(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	ScheduleMetrics(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)

	// Status returns the job record. Jobs of other users yield ErrNotOwned.
	Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Record, error)
}

type jobServiceImpl struct {
	emitter events.EventEmitter
	jobs    JobStatusReader
	logger  *slog.Logger
}

// NewJobService creates a new JobService.
func NewJobService(emitter events.EventEmitter, jobs JobStatusReader, logger *slog.Logger) JobService {
	if emitter == nil || jobs == nil {
		panic("job service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &jobServiceImpl{
		emitter: emitter,
		jobs:    jobs,
		logger:  logger.With(slog.String("component", "job_service")),
	}
}

func (s *jobServiceImpl) Schedule(
	ctx context.Context,
	userID uuid.UUID,
	jobType string,
	payload job.UserPayload,
) (uuid.UUID, error) {
	payload.UserID = userID
	event, err := events.NewJobRequestEvent(jobType, userID, payload)
	if err != nil {
		return uuid.Nil, NewServiceError("job", "schedule", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to schedule job",
			slog.String("job_type", jobType),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return uuid.Nil, NewServiceError("job", "schedule", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("job scheduled",
		slog.String("job_id", event.ID.String()),
		slog.String("job_type", jobType))
	return event.ID, nil
}

func (s *jobServiceImpl) ScheduleExport(ctx context.Context, userID uuid.UUID, format string) (uuid.UUID, error) {
	return s.Schedule(ctx, userID, job.TypeExport, job.UserPayload{Format: format})
}

func (s *jobServiceImpl) ScheduleReminders(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.Schedule(ctx, userID, job.TypeReminders, job.UserPayload{})
}

func (s *jobServiceImpl) ScheduleMetrics(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.Schedule(ctx, userID, job.TypeMetrics, job.UserPayload{})
}

func (s *jobServiceImpl) Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Record, error) {
	rec, err := s.jobs.Status(ctx, jobID)
	if err != nil {
		return nil, NewServiceError("job", "status", err)
	}
	if rec.UserID != userID {
		return nil, NewServiceError("job", "status", ErrNotOwned)
	}
	return rec, nil
}
