package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// chain returns n IDs where ids[i] is the parent of ids[i+1].
func chain(n int) ([]uuid.UUID, Index) {
	ids := make([]uuid.UUID, n)
	idx := make(Index, n)
	for i := range ids {
		ids[i] = uuid.New()
		if i == 0 {
			idx[ids[i]] = uuid.Nil
		} else {
			idx[ids[i]] = ids[i-1]
		}
	}
	return ids, idx
}

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ids, idx := chain(4) // a <- b <- c <- d
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]
	v := NewValidator(idx)
	other := uuid.New()

	testCases := []struct {
		name      string
		task      uuid.UUID
		candidate uuid.UUID
		wantErr   error
	}{
		{"clear parent", b, uuid.Nil, nil},
		{"self", a, a, ErrSelfParent},
		{"direct child as parent", a, b, ErrDescendantParent},
		{"deep descendant as parent", a, d, ErrDescendantParent},
		{"middle node under its descendant", b, d, ErrDescendantParent},
		{"move under ancestor", d, a, nil},
		{"sibling move", c, a, nil},
		{"unknown candidate is top level", a, other, nil},
		{"top-level under leaf of other branch", other, d, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(ctx, tc.task, tc.candidate)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				assert.True(t, v.CanAssign(ctx, tc.task, tc.candidate))
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)
			assert.False(t, v.CanAssign(ctx, tc.task, tc.candidate))
		})
	}
}

func TestValidateRejectsCyclesAtAnyDepth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for depth := 1; depth <= 64; depth *= 2 {
		ids, idx := chain(depth + 1)
		root, leaf := ids[0], ids[depth]
		err := NewValidator(idx).Validate(ctx, root, leaf)
		assert.ErrorIs(t, err, domain.ErrInvalidHierarchy, "depth %d", depth)
	}
}

func TestValidateTerminatesOnCorruptChain(t *testing.T) {
	t.Parallel()

	x, y, z := uuid.New(), uuid.New(), uuid.New()
	idx := Index{x: y, y: x}

	err := NewValidator(idx).Validate(context.Background(), z, x)
	assert.ErrorIs(t, err, ErrCorruptHierarchy)
}

type failingResolver struct{ err error }

func (f failingResolver) ParentOf(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, f.err
}

func TestValidatePropagatesResolverErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := NewValidator(failingResolver{err: boom}).Validate(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrInvalidHierarchy))
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	parent := &domain.Task{ID: uuid.New()}
	child := &domain.Task{ID: uuid.New(), ParentID: &parent.ID}

	idx := NewIndex([]*domain.Task{parent, child})
	got, err := idx.ParentOf(context.Background(), child.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, got)

	got, err = idx.ParentOf(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)

	// B is a child of A: making B the parent of A is rejected.
	err = NewValidator(idx).Validate(context.Background(), parent.ID, child.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)
}

func TestNewValidatorPanicsOnNilResolver(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewValidator(nil) })
}
