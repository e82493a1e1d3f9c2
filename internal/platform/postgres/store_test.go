package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/store"
)

var (
	quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	storeNow    = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", uniqueViolation("x"), store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode}, store.ErrInvalidEntity},
		{"value too long", &pgconn.PgError{Code: stringTooLongCode}, store.ErrInvalidEntity},
		{"other", other, other},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	err := MapUniqueViolation(uniqueViolation("tags_user_id_name_key"), "tags_user_id_name_key", store.ErrTagExists)
	assert.ErrorIs(t, err, store.ErrTagExists)

	err = MapUniqueViolation(uniqueViolation("other_key"), "tags_user_id_name_key", store.ErrTagExists)
	assert.NotErrorIs(t, err, store.ErrTagExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrTaskNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(nil, nil))
}

func TestUserStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("hashes password", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, quietLogger)

		user, err := domain.NewUser("ada", "Ada@Example.com", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "ada", "ada@example.com", sqlmock.AnyArg(),
				"", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse battery")))
	})

	testCases := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", store.ErrUsernameExists},
		{"users_email_key", store.ErrEmailExists},
	}
	for _, tc := range testCases {
		t.Run(tc.constraint, func(t *testing.T) {
			db, mock := newMock(t)
			s := NewPostgresUserStore(db, bcrypt.MinCost, quietLogger)

			user, err := domain.NewUser("ada", "ada@example.com", "correct horse battery")
			require.NoError(t, err)

			mock.ExpectExec("INSERT INTO users").WillReturnError(uniqueViolation(tc.constraint))
			assert.ErrorIs(t, s.Create(context.Background(), user), tc.want)
		})
	}

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, quietLogger)
		err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Username: "ada", Email: "nope"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestUserStoreGetByEmail(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresUserStore(db, 0, quietLogger)

	id := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "hashed_password", "first_name", "last_name", "created_at", "updated_at",
		}).AddRow(id.String(), "ada", "ada@example.com", "hash", "Ada", "Lovelace", storeNow, storeNow))

	user, err := s.GetByEmail(context.Background(), " ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName())

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").WillReturnError(sql.ErrNoRows)
	_, err = s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

var taskRowColumns = []string{
	"id", "user_id", "category_id", "parent_id", "title", "description", "priority", "status",
	"due_date", "completed_at", "created_at", "updated_at", "deleted_at",
}

func TestTaskStoreGetByID(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	id, userID, parentID := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = \\$1 AND deleted_at IS NULL").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(
			id.String(), userID.String(), nil, parentID.String(), "write", "", "HIGH", "DONE",
			nil, storeNow, storeNow, storeNow, nil))

	task, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, domain.StatusDone, task.Status)
	assert.Nil(t, task.CategoryID)
	require.NotNil(t, task.ParentID)
	assert.Equal(t, parentID, *task.ParentID)
	require.NotNil(t, task.CompletedAt)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.IsDeleted())

	mock.ExpectQuery("SELECT .+ FROM tasks").WillReturnError(sql.ErrNoRows)
	_, err = s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreGetByIDForUpdate(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	id, userID := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = \\$1 AND deleted_at IS NULL FOR UPDATE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(
			id.String(), userID.String(), nil, nil, "write", "", "LOW", "TODO",
			nil, nil, storeNow, storeNow, nil))

	task, err := s.GetByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, userID, task.UserID)

	mock.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)
	_, err = s.GetByIDForUpdate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreLockHierarchy(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	userID := uuid.New()
	mock.ExpectExec("SELECT pg_advisory_xact_lock\\(hashtext\\(").
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.LockHierarchy(context.Background(), userID))

	mock.ExpectExec("pg_advisory_xact_lock").WillReturnError(errors.New("connection reset"))
	assert.Error(t, s.LockHierarchy(context.Background(), userID))
}

func TestTaskStoreCreateRejectsInvalidTask(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	task, err := domain.NewTask(uuid.New(), "title", domain.PriorityLow)
	require.NoError(t, err)
	task.Status = domain.StatusDone

	err = s.Create(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrCompletedAtMismatch)
}

func TestTaskStoreParentLinks(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	root, child := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT id, parent_id FROM tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id"}).
			AddRow(root.String(), nil).
			AddRow(child.String(), root.String()))

	links, err := s.ParentLinks(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]uuid.UUID{root: uuid.Nil, child: root}, links)
}

func TestTaskStoreSoftDelete(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, quietLogger)

	id := uuid.New()
	mock.ExpectExec("UPDATE tasks SET deleted_at").
		WithArgs(storeNow, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.SoftDelete(context.Background(), id, storeNow))

	mock.ExpectExec("UPDATE tasks SET deleted_at").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.SoftDelete(context.Background(), id, storeNow), store.ErrTaskNotFound)
}

func TestCategoryStore(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresCategoryStore(db, quietLogger)

	cat, err := domain.NewCategory(uuid.New(), "Work", "", "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Create(context.Background(), cat))

	mock.ExpectQuery("SELECT .+ FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "description", "color", "created_at", "updated_at", "deleted_at",
		}).AddRow(cat.ID.String(), cat.UserID.String(), "Work", "", "#6c757d", storeNow, storeNow, nil))
	list, err := s.ListByUser(context.Background(), cat.UserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Work", list[0].Name)

	mock.ExpectExec("DELETE FROM categories").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(context.Background(), cat.ID), store.ErrCategoryNotFound)
}

func TestTagStore(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTagStore(db, quietLogger)

	tag, err := domain.NewTag(uuid.New(), "home")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tags").WillReturnError(uniqueViolation("tags_user_id_name_key"))
	assert.ErrorIs(t, s.Create(context.Background(), tag), store.ErrTagExists)

	mock.ExpectExec("INSERT INTO task_tags").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.Attach(context.Background(), uuid.New(), tag.ID), "duplicate attach is a no-op")

	mock.ExpectExec("INSERT INTO task_tags").
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})
	assert.ErrorIs(t, s.Attach(context.Background(), uuid.New(), tag.ID), store.ErrNotFound)

	mock.ExpectExec("DELETE FROM task_tags").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Detach(context.Background(), uuid.New(), tag.ID), store.ErrTagNotFound)
}

func TestJobStore(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresJobStore(db, quietLogger)

	id, userID := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT .+ FROM jobs WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "type", "payload", "status", "attempts", "last_error", "result", "created_at", "updated_at",
		}).AddRow(id.String(), userID.String(), "export", []byte(`{"user_id":"x"}`), "failed", 3, "boom", nil, storeNow, storeNow))

	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, userID, rec.UserID)
	assert.Equal(t, job.StatusFailed, rec.Status)
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, "boom", rec.LastError)
	assert.Nil(t, rec.Result)

	mock.ExpectQuery("SELECT .+ FROM jobs WHERE id").WillReturnError(sql.ErrNoRows)
	_, err = s.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)

	mock.ExpectExec("UPDATE jobs SET attempts = attempts \\+ 1").
		WithArgs("boom", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.RecordAttempt(context.Background(), id, "boom"))

	mock.ExpectExec("UPDATE jobs SET status").
		WithArgs("pending", "", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.UpdateStatus(context.Background(), id, job.StatusPending, ""), ErrJobNotFound)
}

func TestConstructorsPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresUserStore(nil, 0, nil) })
	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresCategoryStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresTagStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresJobStore(nil, nil) })
}
