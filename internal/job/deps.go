package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskSource reads a user's tasks.
type TaskSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	ListDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)
}

// UserSource reads users.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// CategorySource reads a user's categories.
type CategorySource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)
}

// TagSource reads a user's tags.
type TagSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)
}

// Deps holds the collaborators the built-in job types need.
type Deps struct {
	Tasks      TaskSource
	Users      UserSource
	Categories CategorySource
	Tags       TagSource

	// Notifier delivers reminders; defaults to a LogNotifier
	Notifier Notifier

	ExportDir           string
	ExportFormat        string
	ReminderConcurrency int

	// Now defaults to time.Now
	Now    func() time.Time
	Logger *slog.Logger
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// RegisterDefaults binds the metrics, reminders and export job types.
func RegisterDefaults(reg *Registry, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(deps.Logger)
	}
	if deps.ReminderConcurrency <= 0 {
		deps.ReminderConcurrency = 4
	}
	if deps.ExportFormat == "" {
		deps.ExportFormat = FormatJSON
	}

	reg.Register(TypeMetrics, func(rec *Record) (Job, error) { return NewMetricsJob(rec, &deps) })
	reg.Register(TypeReminders, func(rec *Record) (Job, error) { return NewRemindersJob(rec, &deps) })
	reg.Register(TypeExport, func(rec *Record) (Job, error) { return NewExportJob(rec, &deps) })
}
