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

const categoryColumns = `id, user_id, name, description, color, created_at, updated_at, deleted_at`

// PostgresCategoryStore implements store.CategoryStore.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a category store.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "category_store")),
	}
}

var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// WithTx implements store.CategoryStore.WithTx
func (s *PostgresCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &PostgresCategoryStore{db: tx, logger: s.logger}
}

// Create implements store.CategoryStore.Create
func (s *PostgresCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		category.ID, category.UserID, category.Name, category.Description, category.Color,
		category.CreatedAt, category.UpdatedAt, category.DeletedAt,
	)
	if err != nil {
		log.Error("failed to create category",
			slog.String("error", err.Error()),
			slog.String("category_id", category.ID.String()))
		return MapError(err)
	}

	log.Debug("category created", slog.String("category_id", category.ID.String()))
	return nil
}

// GetByID implements store.CategoryStore.GetByID
func (s *PostgresCategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND `+visibleOnly, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get category",
			slog.String("error", err.Error()),
			slog.String("category_id", id.String()))
		return nil, MapError(err)
	}
	return c, nil
}

// ListByUser implements store.CategoryStore.ListByUser
func (s *PostgresCategoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = $1 AND `+visibleOnly+`
		ORDER BY name, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return categories, nil
}

// Update implements store.CategoryStore.Update
func (s *PostgresCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, description = $2, color = $3, updated_at = $4
		WHERE id = $5 AND `+visibleOnly,
		category.Name, category.Description, category.Color, category.UpdatedAt, category.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update category",
			slog.String("error", err.Error()),
			slog.String("category_id", category.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCategoryNotFound)
}

// SoftDelete implements store.CategoryStore.SoftDelete
func (s *PostgresCategoryStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND `+visibleOnly, at.UTC(), id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCategoryNotFound); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("category soft deleted",
		slog.String("category_id", id.String()))
	return nil
}

// Delete implements store.CategoryStore.Delete. Tasks referencing the
// category have their category cleared by the foreign key.
func (s *PostgresCategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCategoryNotFound); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("category deleted",
		slog.String("category_id", id.String()))
	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c         domain.Category
		deletedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	c.DeletedAt = timePtr(deletedAt)
	return &c, nil
}
