package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// Submitter accepts jobs for execution. *Runner implements it.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// EventHandler turns job request events into jobs and submits them.
type EventHandler struct {
	registry *Registry
	runner   Submitter
	logger   *slog.Logger
}

var _ events.EventHandler = (*EventHandler)(nil)

// NewEventHandler creates a handler that builds jobs through registry.
func NewEventHandler(registry *Registry, runner Submitter, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		registry: registry,
		runner:   runner,
		logger:   logger.With(slog.String("component", "job_event_handler")),
	}
}

// HandleEvent implements events.EventHandler. The event ID is used as the
// job ID.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	log := h.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("job_type", event.Type))

	now := time.Now().UTC()
	rec := &Record{
		ID:        event.ID,
		UserID:    event.UserID,
		Type:      event.Type,
		Payload:   event.Payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	job, err := h.registry.Build(rec)
	if err != nil {
		log.Error("failed to create job", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create job: %w", err)
	}

	if err := h.runner.Submit(ctx, job); err != nil {
		log.Error("failed to submit job", slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit job: %w", err)
	}

	log.Info("job created and submitted", slog.String("user_id", event.UserID.String()))
	return nil
}
