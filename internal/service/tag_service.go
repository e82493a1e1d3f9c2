package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TagService manages a user's tags.
type TagService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)

	// Create returns store.ErrTagExists if the user already has the name.
	Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)

	Delete(ctx context.Context, userID, tagID uuid.UUID) error
}

type tagServiceImpl struct {
	tags   store.TagStore
	logger *slog.Logger
}

// NewTagService creates a new TagService.
func NewTagService(tags store.TagStore, logger *slog.Logger) TagService {
	if tags == nil {
		panic("tag store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tagServiceImpl{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_service")),
	}
}

func (s *tagServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	tags, err := s.tags.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("tag", "list", err)
	}
	return tags, nil
}

func (s *tagServiceImpl) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	tag, err := domain.NewTag(userID, name)
	if err != nil {
		return nil, NewServiceError("tag", "create", validationError(err))
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, NewServiceError("tag", "create", err)
	}
	return tag, nil
}

func (s *tagServiceImpl) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return NewServiceError("tag", "delete", err)
	}
	if tag.UserID != userID {
		return NewServiceError("tag", "delete", ErrNotOwned)
	}
	if err := s.tags.Delete(ctx, tagID); err != nil {
		return NewServiceError("tag", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("tag deleted",
		slog.String("tag_id", tagID.String()))
	return nil
}
