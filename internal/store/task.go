package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
//
// Reads only return visible (not soft-deleted) tasks unless stated
// otherwise. Tasks are never physically removed through this interface.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist or is deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID that also locks the row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// LockHierarchy blocks until no other transaction is changing the
	// user's task hierarchy. The lock is held until the transaction ends,
	// so it must be called on a store bound to a transaction.
	LockHierarchy(ctx context.Context, userID uuid.UUID) error

	// ListByUser returns the user's visible tasks ordered by creation time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListDueBetween returns the user's visible, open tasks due in [from, to].
	ListDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)

	// ParentLinks maps every task the user owns, deleted ones included, to
	// its parent ID (uuid.Nil for top-level tasks).
	ParentLinks(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	// Update saves all mutable fields of a visible task.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete hides the task. Returns ErrTaskNotFound if it is already hidden.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// CountByCategory counts every task referencing the category, deleted
	// tasks included.
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)

	WithTx(tx *sql.Tx) TaskStore
}
