package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TagStore defines the interface for tags and their task assignments.
type TagStore interface {
	// Create returns ErrTagExists if the user already has a tag with that name.
	Create(ctx context.Context, tag *domain.Tag) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// ListByUser returns the user's tags ordered by name.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)

	// Delete removes the tag and its task assignments.
	Delete(ctx context.Context, id uuid.UUID) error

	// Attach is idempotent.
	Attach(ctx context.Context, taskID, tagID uuid.UUID) error

	// Detach returns ErrTagNotFound if the tag is not on the task.
	Detach(ctx context.Context, taskID, tagID uuid.UUID) error

	// ListForTask returns the tags on a task ordered by name.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error)

	// TaskIDsWithTag returns the IDs of tasks carrying the tag.
	TaskIDsWithTag(ctx context.Context, tagID uuid.UUID) ([]uuid.UUID, error)

	WithTx(tx *sql.Tx) TagStore
}
