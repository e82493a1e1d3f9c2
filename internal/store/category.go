package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	Create(ctx context.Context, category *domain.Category) error

	// GetByID returns ErrCategoryNotFound if missing or soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// ListByUser returns visible categories ordered by name.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)

	Update(ctx context.Context, category *domain.Category) error

	// SoftDelete hides a category that tasks still reference.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// Delete removes a category permanently.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) CategoryStore
}
