package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const taskColumns = `id, user_id, category_id, parent_id, title, description, priority, status,
	due_date, completed_at, created_at, updated_at, deleted_at`

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store. If logger is nil the default
// logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		task.ID, task.UserID, task.CategoryID, task.ParentID, task.Title, task.Description,
		task.Priority, task.Status, task.DueDate, task.CompletedAt,
		task.CreatedAt, task.UpdatedAt, task.DeletedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND `+visibleOnly, id)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.get(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND `+visibleOnly+` FOR UPDATE`, id)
}

func (s *PostgresTaskStore) get(ctx context.Context, query string, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

// LockHierarchy implements store.TaskStore.LockHierarchy with a
// transaction-scoped advisory lock keyed on the user.
func (s *PostgresTaskStore) LockHierarchy(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('task_hierarchy:' || $1::text))`, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to lock task hierarchy",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.TaskStore.ListByUser
func (s *PostgresTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND `+visibleOnly+`
		ORDER BY created_at, id`, userID)
}

// ListDueBetween implements store.TaskStore.ListDueBetween
func (s *PostgresTaskStore) ListDueBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]*domain.Task, error) {
	return s.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND `+visibleOnly+`
		  AND status <> 'DONE'
		  AND due_date BETWEEN $2 AND $3
		ORDER BY due_date, id`, userID, from, to)
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// ParentLinks implements store.TaskStore.ParentLinks
func (s *PostgresTaskStore) ParentLinks(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	links := make(map[uuid.UUID]uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var parent uuid.NullUUID
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, MapError(err)
		}
		if parent.Valid {
			links[id] = parent.UUID
		} else {
			links[id] = uuid.Nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return links, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET category_id = $1, parent_id = $2, title = $3, description = $4,
		    priority = $5, status = $6, due_date = $7, completed_at = $8, updated_at = $9
		WHERE id = $10 AND `+visibleOnly,
		task.CategoryID, task.ParentID, task.Title, task.Description,
		task.Priority, task.Status, task.DueDate, task.CompletedAt, task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// SoftDelete implements store.TaskStore.SoftDelete
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND `+visibleOnly, at.UTC(), id)
	if err != nil {
		log.Error("failed to soft delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task soft deleted", slog.String("task_id", id.String()))
	return nil
}

// CountByCategory implements store.TaskStore.CountByCategory
func (s *PostgresTaskStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                               domain.Task
		categoryID, parentID            uuid.NullUUID
		priority, status                string
		dueDate, completedAt, deletedAt sql.NullTime
	)

	err := row.Scan(
		&t.ID, &t.UserID, &categoryID, &parentID, &t.Title, &t.Description,
		&priority, &status, &dueDate, &completedAt,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.CategoryID = uuidPtr(categoryID)
	t.ParentID = uuidPtr(parentID)
	t.DueDate = timePtr(dueDate)
	t.CompletedAt = timePtr(completedAt)
	t.DeletedAt = timePtr(deletedAt)
	return &t, nil
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time.UTC()
	return &t
}
