package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// CategoryService manages a user's categories.
type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)
	Create(ctx context.Context, userID uuid.UUID, in CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, userID, categoryID uuid.UUID, in CategoryInput) (*domain.Category, error)

	// Delete soft-deletes a category that any task references and removes
	// it outright otherwise. It reports whether the delete was soft.
	Delete(ctx context.Context, userID, categoryID uuid.UUID) (soft bool, err error)
}

type categoryServiceImpl struct {
	categories store.CategoryStore
	tasks      store.TaskStore
	db         store.TxBeginner
	now        func() time.Time
	logger     *slog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(
	categories store.CategoryStore,
	tasks store.TaskStore,
	db store.TxBeginner,
	logger *slog.Logger,
) CategoryService {
	if categories == nil || tasks == nil || db == nil {
		panic("category service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryServiceImpl{
		categories: categories,
		tasks:      tasks,
		db:         db,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "category_service")),
	}
}

func (s *categoryServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("category", "list", err)
	}
	return categories, nil
}

func (s *categoryServiceImpl) Create(ctx context.Context, userID uuid.UUID, in CategoryInput) (*domain.Category, error) {
	category, err := domain.NewCategory(userID, in.Name, strings.TrimSpace(in.Description), in.Color)
	if err != nil {
		return nil, NewServiceError("category", "create", validationError(err))
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, NewServiceError("category", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("category created",
		slog.String("category_id", category.ID.String()))
	return category, nil
}

func (s *categoryServiceImpl) Update(
	ctx context.Context,
	userID, categoryID uuid.UUID,
	in CategoryInput,
) (*domain.Category, error) {
	category, err := s.owned(ctx, s.categories, userID, categoryID)
	if err != nil {
		return nil, NewServiceError("category", "update", err)
	}

	category.Name = strings.TrimSpace(in.Name)
	category.Description = strings.TrimSpace(in.Description)
	if in.Color != "" {
		category.Color = in.Color
	}
	category.UpdatedAt = s.now().UTC()

	if err := category.Validate(); err != nil {
		return nil, NewServiceError("category", "update", validationError(err))
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, NewServiceError("category", "update", err)
	}
	return category, nil
}

func (s *categoryServiceImpl) Delete(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	var soft bool
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		categories := s.categories.WithTx(tx)
		if _, err := s.owned(ctx, categories, userID, categoryID); err != nil {
			return err
		}

		count, err := s.tasks.WithTx(tx).CountByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if count > 0 {
			soft = true
			return categories.SoftDelete(ctx, categoryID, s.now())
		}
		return categories.Delete(ctx, categoryID)
	})
	if err != nil {
		return false, NewServiceError("category", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("category deleted",
		slog.String("category_id", categoryID.String()),
		slog.Bool("soft", soft))
	return soft, nil
}

func (s *categoryServiceImpl) owned(
	ctx context.Context,
	categories store.CategoryStore,
	userID, categoryID uuid.UUID,
) (*domain.Category, error) {
	category, err := categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrNotOwned
	}
	return category, nil
}
