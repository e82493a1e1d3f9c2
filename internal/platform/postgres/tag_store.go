package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const tagColumns = `id, user_id, name, created_at`

// PostgresTagStore implements store.TagStore.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a tag store.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger}
}

// Create implements store.TagStore.Create. Tag names are unique per user.
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (`+tagColumns+`) VALUES ($1, $2, $3, $4)`,
		tag.ID, tag.UserID, tag.Name, tag.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("tag_name", tag.Name))
		return MapUniqueViolation(err, "tags_user_id_name_key", store.ErrTagExists)
	}
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *PostgresTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, MapError(err)
	}
	return &t, nil
}

// ListByUser implements store.TagStore.ListByUser
func (s *PostgresTagStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	return s.list(ctx, `SELECT `+tagColumns+` FROM tags WHERE user_id = $1 ORDER BY name`, userID)
}

// ListForTask implements store.TagStore.ListForTask
func (s *PostgresTagStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	return s.list(ctx, `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name`, taskID)
}

func (s *PostgresTagStore) list(ctx context.Context, query string, arg any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tags",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tags, nil
}

// Delete implements store.TagStore.Delete. Task links go with it.
func (s *PostgresTagStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// Attach implements store.TagStore.Attach. Attaching twice is a no-op.
func (s *PostgresTagStore) Attach(ctx context.Context, taskID, tagID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2)
		ON CONFLICT (task_id, tag_id) DO NOTHING`, taskID, tagID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrNotFound, err)
		}
		return MapError(err)
	}
	return nil
}

// Detach implements store.TagStore.Detach
func (s *PostgresTagStore) Detach(ctx context.Context, taskID, tagID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2`, taskID, tagID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// TaskIDsWithTag implements store.TagStore.TaskIDsWithTag
func (s *PostgresTagStore) TaskIDsWithTag(ctx context.Context, tagID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id FROM task_tags WHERE tag_id = $1`, tagID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
