// Package hierarchy guards the parent/child structure of tasks. A task may
// be nested under another task, but never under itself or one of its own
// descendants.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Rejection reasons. All of them wrap domain.ErrInvalidHierarchy.
var (
	ErrSelfParent       = fmt.Errorf("%w: task cannot be its own parent", domain.ErrInvalidHierarchy)
	ErrDescendantParent = fmt.Errorf("%w: parent is a descendant of the task", domain.ErrInvalidHierarchy)
	ErrCorruptHierarchy = fmt.Errorf("%w: existing parent chain contains a cycle", domain.ErrInvalidHierarchy)
)

// ParentResolver looks up the parent of a task. It returns uuid.Nil for a
// top-level or unknown task.
type ParentResolver interface {
	ParentOf(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error)
}

// Validator decides whether a task may be placed under a candidate parent.
type Validator struct {
	resolver ParentResolver
}

// NewValidator creates a Validator that reads parent links from resolver.
func NewValidator(resolver ParentResolver) *Validator {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	return &Validator{resolver: resolver}
}

// Validate returns nil when taskID may take candidateParentID as its parent.
// Passing uuid.Nil as the candidate clears the parent and is always allowed.
//
// The candidate's ancestor chain is walked upward one link at a time. Each
// task is visited at most once, so the walk ends even when stored data
// already contains a cycle.
func (v *Validator) Validate(ctx context.Context, taskID, candidateParentID uuid.UUID) error {
	if candidateParentID == uuid.Nil {
		return nil
	}
	if candidateParentID == taskID {
		return ErrSelfParent
	}

	visited := make(map[uuid.UUID]struct{})
	current := candidateParentID
	for current != uuid.Nil {
		if current == taskID {
			return ErrDescendantParent
		}
		if _, seen := visited[current]; seen {
			return ErrCorruptHierarchy
		}
		visited[current] = struct{}{}

		if err := ctx.Err(); err != nil {
			return err
		}

		parent, err := v.resolver.ParentOf(ctx, current)
		if err != nil {
			return fmt.Errorf("failed to resolve parent of task %s: %w", current, err)
		}
		current = parent
	}

	return nil
}

// CanAssign is the boolean form of Validate.
func (v *Validator) CanAssign(ctx context.Context, taskID, candidateParentID uuid.UUID) bool {
	return v.Validate(ctx, taskID, candidateParentID) == nil
}
