package hierarchy

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Index is an in-memory ParentResolver keyed by task ID. Tasks without a
// parent are either absent or map to uuid.Nil.
type Index map[uuid.UUID]uuid.UUID

var _ ParentResolver = Index(nil)

// NewIndex builds an Index from a set of tasks. Soft-deleted tasks are
// included because they still anchor their children.
func NewIndex(tasks []*domain.Task) Index {
	idx := make(Index, len(tasks))
	for _, t := range tasks {
		if t.HasParent() {
			idx[t.ID] = *t.ParentID
		} else {
			idx[t.ID] = uuid.Nil
		}
	}
	return idx
}

// ParentOf implements ParentResolver.
func (idx Index) ParentOf(_ context.Context, taskID uuid.UUID) (uuid.UUID, error) {
	return idx[taskID], nil
}

