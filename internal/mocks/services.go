package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserService is a testify mock of service.UserService.
type UserService struct {
	mock.Mock
}

var _ service.UserService = (*UserService)(nil)

func (m *UserService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	args := m.Called(ctx, login, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	in service.ProfileUpdate,
) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next, confirm string) error {
	return m.Called(ctx, userID, current, next, confirm).Error(0)
}

func (m *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// TaskService is a testify mock of service.TaskService.
type TaskService struct {
	mock.Mock
}

var _ service.TaskService = (*TaskService)(nil)

func (m *TaskService) Create(ctx context.Context, userID uuid.UUID, in service.TaskInput) (*domain.Task, error) {
	args := m.Called(ctx, userID, in)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) List(ctx context.Context, userID uuid.UUID, q service.ListQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, q)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskService) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	in service.TaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID, in)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *TaskService) Toggle(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) SetStatus(
	ctx context.Context,
	userID, taskID uuid.UUID,
	status domain.Status,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID, status)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) Subtasks(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskService) Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *TaskService) Tags(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Tag, error) {
	args := m.Called(ctx, userID, taskID)
	tags, _ := args.Get(0).([]*domain.Tag)
	return tags, args.Error(1)
}

func (m *TaskService) AttachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	return m.Called(ctx, userID, taskID, tagID).Error(0)
}

func (m *TaskService) DetachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	return m.Called(ctx, userID, taskID, tagID).Error(0)
}

func (m *TaskService) SuggestSubtasks(
	ctx context.Context,
	userID, taskID uuid.UUID,
	limit int,
	create bool,
) (*service.SuggestionResult, error) {
	args := m.Called(ctx, userID, taskID, limit, create)
	result, _ := args.Get(0).(*service.SuggestionResult)
	return result, args.Error(1)
}

// CategoryService is a testify mock of service.CategoryService.
type CategoryService struct {
	mock.Mock
}

var _ service.CategoryService = (*CategoryService)(nil)

func (m *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	args := m.Called(ctx, userID)
	categories, _ := args.Get(0).([]*domain.Category)
	return categories, args.Error(1)
}

func (m *CategoryService) Create(
	ctx context.Context,
	userID uuid.UUID,
	in service.CategoryInput,
) (*domain.Category, error) {
	args := m.Called(ctx, userID, in)
	category, _ := args.Get(0).(*domain.Category)
	return category, args.Error(1)
}

func (m *CategoryService) Update(
	ctx context.Context,
	userID, categoryID uuid.UUID,
	in service.CategoryInput,
) (*domain.Category, error) {
	args := m.Called(ctx, userID, categoryID, in)
	category, _ := args.Get(0).(*domain.Category)
	return category, args.Error(1)
}

func (m *CategoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, categoryID)
	return args.Bool(0), args.Error(1)
}

// TagService is a testify mock of service.TagService.
type TagService struct {
	mock.Mock
}

var _ service.TagService = (*TagService)(nil)

func (m *TagService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	args := m.Called(ctx, userID)
	tags, _ := args.Get(0).([]*domain.Tag)
	return tags, args.Error(1)
}

func (m *TagService) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	args := m.Called(ctx, userID, name)
	tag, _ := args.Get(0).(*domain.Tag)
	return tag, args.Error(1)
}

func (m *TagService) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	return m.Called(ctx, userID, tagID).Error(0)
}

// AnalyticsService is a testify mock of service.AnalyticsService.
type AnalyticsService struct {
	mock.Mock
}

var _ service.AnalyticsService = (*AnalyticsService)(nil)

func (m *AnalyticsService) Stats(ctx context.Context, userID uuid.UUID) (analytics.Stats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(analytics.Stats)
	return stats, args.Error(1)
}

func (m *AnalyticsService) Dashboard(ctx context.Context, userID uuid.UUID) (*service.Dashboard, error) {
	args := m.Called(ctx, userID)
	dashboard, _ := args.Get(0).(*service.Dashboard)
	return dashboard, args.Error(1)
}

func (m *AnalyticsService) Report(ctx context.Context, userID uuid.UUID) (*service.Report, error) {
	args := m.Called(ctx, userID)
	report, _ := args.Get(0).(*service.Report)
	return report, args.Error(1)
}

// JobService is a testify mock of service.JobService.
type JobService struct {
	mock.Mock
}

var _ service.JobService = (*JobService)(nil)

func (m *JobService) Schedule(
	ctx context.Context,
	userID uuid.UUID,
	jobType string,
	payload job.UserPayload,
) (uuid.UUID, error) {
	args := m.Called(ctx, userID, jobType, payload)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *JobService) ScheduleExport(ctx context.Context, userID uuid.UUID, format string) (uuid.UUID, error) {
	args := m.Called(ctx, userID, format)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *JobService) ScheduleReminders(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *JobService) ScheduleMetrics(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *JobService) Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Record, error) {
	args := m.Called(ctx, userID, jobID)
	rec, _ := args.Get(0).(*job.Record)
	return rec, args.Error(1)
}
