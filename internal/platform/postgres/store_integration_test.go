//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
)

func createUser(t *testing.T, ctx context.Context, users store.UserStore, name string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, name+"@example.com", "integration-password")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))
	return user
}

func TestStores_Integration(t *testing.T) {
	db := testdb.Open(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		categories := postgres.NewPostgresCategoryStore(tx, nil)
		tags := postgres.NewPostgresTagStore(tx, nil)

		owner := createUser(t, ctx, users, "integration_"+uuid.NewString()[:8])

		t.Run("duplicate username", func(t *testing.T) {
			dupe, err := domain.NewUser(owner.Username, "other_"+owner.Email, "integration-password")
			require.NoError(t, err)
			assert.ErrorIs(t, users.Create(ctx, dupe), store.ErrUsernameExists)
		})

		category, err := domain.NewCategory(owner.ID, "Work", "", "#336699")
		require.NoError(t, err)
		require.NoError(t, categories.Create(ctx, category))

		parent, err := domain.NewTask(owner.ID, "Ship release", domain.PriorityHigh)
		require.NoError(t, err)
		parent.CategoryID = &category.ID
		due := time.Now().UTC().Add(6 * time.Hour).Truncate(time.Microsecond)
		parent.DueDate = &due
		require.NoError(t, tasks.Create(ctx, parent))

		child, err := domain.NewTask(owner.ID, "Write notes", "")
		require.NoError(t, err)
		child.ParentID = &parent.ID
		require.NoError(t, tasks.Create(ctx, child))

		t.Run("round trip", func(t *testing.T) {
			got, err := tasks.GetByID(ctx, parent.ID)
			require.NoError(t, err)
			assert.Equal(t, parent.Title, got.Title)
			assert.Equal(t, domain.PriorityHigh, got.Priority)
			require.NotNil(t, got.DueDate)
			assert.True(t, due.Equal(*got.DueDate))
		})

		t.Run("parent links", func(t *testing.T) {
			links, err := tasks.ParentLinks(ctx, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, parent.ID, links[child.ID])
		})

		t.Run("category references", func(t *testing.T) {
			n, err := tasks.CountByCategory(ctx, category.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})

		t.Run("tags", func(t *testing.T) {
			tag, err := domain.NewTag(owner.ID, "urgent-ish")
			require.NoError(t, err)
			require.NoError(t, tags.Create(ctx, tag))
			require.NoError(t, tags.Attach(ctx, parent.ID, tag.ID))

			got, err := tags.ListForTask(ctx, parent.ID)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "urgent-ish", got[0].Name)
		})

		t.Run("soft delete hides the task", func(t *testing.T) {
			require.NoError(t, tasks.SoftDelete(ctx, child.ID, time.Now().UTC()))
			got, err := tasks.GetByID(ctx, child.ID)
			if err == nil {
				assert.NotNil(t, got.DeletedAt)
			} else {
				assert.ErrorIs(t, err, store.ErrTaskNotFound)
			}
		})
	})
}

// Crossed moves (A under B, B under A) run in separate committed
// transactions, so this test cannot use testdb.WithTx.
func TestConcurrentParentChanges_Integration(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	users := postgres.NewPostgresUserStore(db, bcrypt.MinCost, nil)
	tasks := postgres.NewPostgresTaskStore(db, nil)
	svc := service.NewTaskService(service.TaskServiceDeps{
		Tasks:      tasks,
		Categories: postgres.NewPostgresCategoryStore(db, nil),
		Tags:       postgres.NewPostgresTagStore(db, nil),
		DB:         db,
	})

	owner := createUser(t, ctx, users, "hierarchy_"+uuid.NewString()[:8])
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM users WHERE id = $1`, owner.ID)
	})

	for i := 0; i < 20; i++ {
		a, err := svc.Create(ctx, owner.ID, service.TaskInput{Title: "a"})
		require.NoError(t, err)
		b, err := svc.Create(ctx, owner.ID, service.TaskInput{Title: "b"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for j, move := range [][2]uuid.UUID{{a.ID, b.ID}, {b.ID, a.ID}} {
			wg.Add(1)
			go func(j int, taskID, parentID uuid.UUID) {
				defer wg.Done()
				<-start
				_, errs[j] = svc.Update(ctx, owner.ID, taskID, service.TaskInput{
					Title:    "moved",
					ParentID: &parentID,
				})
			}(j, move[0], move[1])
		}
		close(start)
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				require.True(t, errors.Is(err, domain.ErrInvalidHierarchy), "unexpected error: %v", err)
				failed++
			}
		}
		require.Equal(t, 1, failed, "exactly one crossed move must be rejected")

		links, err := tasks.ParentLinks(ctx, owner.ID)
		require.NoError(t, err)
		assert.False(t, links[a.ID] == b.ID && links[b.ID] == a.ID, "cycle committed")
	}
}
