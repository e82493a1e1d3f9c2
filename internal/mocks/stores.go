package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore is a testify mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserStore) WithTx(*sql.Tx) store.UserStore { return m }

// TaskStore is a testify mock of store.TaskStore.
type TaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TaskStore)(nil)

func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskStore) LockHierarchy(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskStore) ListDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, from, to)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskStore) ParentLinks(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).(map[uuid.UUID]uuid.UUID)
	return links, args.Error(1)
}

func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *TaskStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *TaskStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *TaskStore) WithTx(*sql.Tx) store.TaskStore { return m }

// CategoryStore is a testify mock of store.CategoryStore.
type CategoryStore struct {
	mock.Mock
}

var _ store.CategoryStore = (*CategoryStore)(nil)

func (m *CategoryStore) Create(ctx context.Context, category *domain.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*domain.Category)
	return category, args.Error(1)
}

func (m *CategoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	args := m.Called(ctx, userID)
	categories, _ := args.Get(0).([]*domain.Category)
	return categories, args.Error(1)
}

func (m *CategoryStore) Update(ctx context.Context, category *domain.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *CategoryStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CategoryStore) WithTx(*sql.Tx) store.CategoryStore { return m }

// TagStore is a testify mock of store.TagStore.
type TagStore struct {
	mock.Mock
}

var _ store.TagStore = (*TagStore)(nil)

func (m *TagStore) Create(ctx context.Context, tag *domain.Tag) error {
	return m.Called(ctx, tag).Error(0)
}

func (m *TagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	args := m.Called(ctx, id)
	tag, _ := args.Get(0).(*domain.Tag)
	return tag, args.Error(1)
}

func (m *TagStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	args := m.Called(ctx, userID)
	tags, _ := args.Get(0).([]*domain.Tag)
	return tags, args.Error(1)
}

func (m *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TagStore) Attach(ctx context.Context, taskID, tagID uuid.UUID) error {
	return m.Called(ctx, taskID, tagID).Error(0)
}

func (m *TagStore) Detach(ctx context.Context, taskID, tagID uuid.UUID) error {
	return m.Called(ctx, taskID, tagID).Error(0)
}

func (m *TagStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Tag, error) {
	args := m.Called(ctx, taskID)
	tags, _ := args.Get(0).([]*domain.Tag)
	return tags, args.Error(1)
}

func (m *TagStore) TaskIDsWithTag(ctx context.Context, tagID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tagID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *TagStore) WithTx(*sql.Tx) store.TagStore { return m }
