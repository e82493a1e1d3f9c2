package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Reminder describes one task that is due soon.
type Reminder struct {
	TaskID  uuid.UUID `json:"task_id"`
	UserID  uuid.UUID `json:"-"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// Notifier delivers a reminder to its user.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger.FromContextOrDefault(ctx, n.logger).Info("task due soon",
		slog.String("user_id", r.UserID.String()),
		slog.String("task_id", r.TaskID.String()),
		slog.String("title", r.Title),
		slog.Time("due_date", r.DueDate))
	return nil
}

// RemindersJob notifies a user about every open task due within
// domain.DueSoonWindow.
type RemindersJob struct {
	base
	deps      *Deps
	reminders []Reminder
}

// NewRemindersJob builds a reminders job from its record.
func NewRemindersJob(rec *Record, deps *Deps) (*RemindersJob, error) {
	p, err := decodeUserPayload(rec)
	if err != nil {
		return nil, err
	}
	b := newBase(rec)
	b.userID = p.UserID
	return &RemindersJob{base: b, deps: deps}, nil
}

// Execute implements Job. Notifications are sent concurrently, bounded by
// the configured reminder concurrency.
func (j *RemindersJob) Execute(ctx context.Context) error {
	now := j.deps.now()
	tasks, err := j.deps.Tasks.ListDueBetween(ctx, j.userID, now, now.Add(domain.DueSoonWindow))
	if err != nil {
		return fmt.Errorf("failed to load due tasks: %w", err)
	}
	due := analytics.Filter(tasks, analytics.DueSoon(now))

	reminders := make([]Reminder, len(due))
	for i, t := range due {
		reminders[i] = Reminder{TaskID: t.ID, UserID: j.userID, Title: t.Title, DueDate: *t.DueDate}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.deps.ReminderConcurrency)

	var mu sync.Mutex
	sent := make([]Reminder, 0, len(reminders))
	for _, r := range reminders {
		g.Go(func() error {
			if err := j.deps.Notifier.Notify(gctx, r); err != nil {
				return fmt.Errorf("failed to notify task %s: %w", r.TaskID, err)
			}
			mu.Lock()
			sent = append(sent, r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	j.reminders = reminders
	logger.FromContextOrDefault(ctx, j.deps.Logger).Info("reminders sent",
		slog.String("job_id", j.id.String()),
		slog.String("user_id", j.userID.String()),
		slog.Int("count", len(sent)))
	return nil
}

// Reminders returns the reminders of the last successful run, in due
// date order.
func (j *RemindersJob) Reminders() []Reminder {
	return j.reminders
}

// Result implements Resulter.
func (j *RemindersJob) Result() ([]byte, error) {
	if j.reminders == nil {
		return json.Marshal([]Reminder{})
	}
	return json.Marshal(j.reminders)
}
