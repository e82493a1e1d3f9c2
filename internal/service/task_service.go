package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/analytics"
	"github.com/phrazzld/taskboard-api/internal/domain/hierarchy"
	"github.com/phrazzld/taskboard-api/internal/platform/cache"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskInput is the full set of writable task fields. On update every field
// replaces the stored value; an empty Status leaves the status unchanged.
type TaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     *time.Time
	CategoryID  *uuid.UUID
	ParentID    *uuid.UUID
}

// ListQuery narrows and orders a task listing. Nil filters match everything.
type ListQuery struct {
	Status     *domain.Status
	Priority   *domain.Priority
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	ParentID   *uuid.UUID
	SortBy     analytics.SortKey
	SortOrder  analytics.SortOrder
}

// SuggestionResult is the outcome of a subtask suggestion request.
type SuggestionResult struct {
	Suggestions []string       `json:"suggestions"`
	Created     []*domain.Task `json:"created,omitempty"`
}

// SubtaskSuggester proposes subtask titles for a task.
type SubtaskSuggester interface {
	Suggest(ctx context.Context, title, description string, limit int) ([]string, error)
}

// TaskService provides task operations scoped to a single user.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*domain.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// List returns the user's visible tasks, filtered and sorted.
	List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]*domain.Task, error)

	// Update replaces the task's fields. Moving a task under a new parent is
	// rejected with domain.ErrInvalidHierarchy if it would create a cycle.
	Update(ctx context.Context, userID, taskID uuid.UUID, in TaskInput) (*domain.Task, error)

	// Delete soft-deletes the task.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// Toggle completes an open task or reopens a DONE one.
	Toggle(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// SetStatus applies an explicit status transition.
	SetStatus(ctx context.Context, userID, taskID uuid.UUID, status domain.Status) (*domain.Task, error)

	// Subtasks returns the visible direct children of a task.
	Subtasks(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Task, error)

	// Overdue returns open tasks past their due date, earliest first.
	Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	Tags(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Tag, error)
	AttachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error
	DetachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error

	// SuggestSubtasks asks the language model for subtask titles. With
	// create set, each suggestion becomes a child task.
	SuggestSubtasks(ctx context.Context, userID, taskID uuid.UUID, limit int, create bool) (*SuggestionResult, error)
}

// TaskServiceDeps holds the collaborators of the task service. Cache,
// Suggester, Now and Logger are optional.
type TaskServiceDeps struct {
	Tasks      store.TaskStore
	Categories store.CategoryStore
	Tags       store.TagStore
	DB         store.TxBeginner
	Cache      cache.StatsCache
	Suggester  SubtaskSuggester
	Now        func() time.Time
	Logger     *slog.Logger
}

type taskServiceImpl struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	tags       store.TagStore
	db         store.TxBeginner
	cache      cache.StatsCache
	suggester  SubtaskSuggester
	now        func() time.Time
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(deps TaskServiceDeps) TaskService {
	if deps.Tasks == nil || deps.Categories == nil || deps.Tags == nil || deps.DB == nil {
		panic("task service stores and db cannot be nil")
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:      deps.Tasks,
		categories: deps.Categories,
		tags:       deps.Tags,
		db:         deps.DB,
		cache:      deps.Cache,
		suggester:  deps.Suggester,
		now:        deps.Now,
		logger:     deps.Logger.With(slog.String("component", "task_service")),
	}
}

func (s *taskServiceImpl) Create(ctx context.Context, userID uuid.UUID, in TaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(userID, in.Title, in.Priority)
	if err != nil {
		return nil, NewServiceError("task", "create", validationError(err))
	}
	task.Description = strings.TrimSpace(in.Description)
	task.DueDate = utcPtr(in.DueDate)
	task.CategoryID = nonNil(in.CategoryID)
	task.ParentID = nonNil(in.ParentID)

	if in.Status != "" && in.Status != task.Status {
		moved, err := domain.ApplyStatusTransition(*task, in.Status, s.now())
		if err != nil {
			return nil, NewServiceError("task", "create", err)
		}
		*task = moved
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		if err := s.checkCategory(ctx, s.categories.WithTx(tx), userID, task.CategoryID); err != nil {
			return err
		}
		if task.ParentID != nil {
			if _, err := ownedTask(ctx, tasks, userID, *task.ParentID); err != nil {
				return err
			}
		}
		return tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, NewServiceError("task", "create", err)
	}

	s.invalidate(ctx, userID)
	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := ownedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}

	var preds []analytics.Predicate
	if q.Status != nil {
		preds = append(preds, analytics.WithStatus(*q.Status))
	}
	if q.Priority != nil {
		preds = append(preds, analytics.WithPriority(*q.Priority))
	}
	if q.CategoryID != nil {
		preds = append(preds, analytics.InCategory(*q.CategoryID))
	}
	if q.ParentID != nil {
		preds = append(preds, analytics.WithParent(*q.ParentID))
	}
	if q.TagID != nil {
		tagged, err := s.taggedTaskIDs(ctx, userID, *q.TagID)
		if err != nil {
			return nil, NewServiceError("task", "list", err)
		}
		preds = append(preds, func(t *domain.Task) bool {
			_, ok := tagged[t.ID]
			return ok
		})
	}
	tasks = analytics.Filter(tasks, preds...)

	key := q.SortBy
	if key == "" {
		key = analytics.SortByDueDate
	}
	order := q.SortOrder
	if order == "" {
		order = analytics.Ascending
	}

	var names map[uuid.UUID]string
	if key == analytics.SortByCategory {
		categories, err := s.categories.ListByUser(ctx, userID)
		if err != nil {
			return nil, NewServiceError("task", "list", err)
		}
		names = make(map[uuid.UUID]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}
	}

	return analytics.SortTasks(tasks, key, order, names), nil
}

func (s *taskServiceImpl) Update(ctx context.Context, userID, taskID uuid.UUID, in TaskInput) (*domain.Task, error) {
	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := ownedTaskForUpdate(ctx, tasks, userID, taskID)
		if err != nil {
			return err
		}

		next := *task
		next.Title = strings.TrimSpace(in.Title)
		next.Description = strings.TrimSpace(in.Description)
		if in.Priority != "" {
			next.Priority = in.Priority
		}
		next.DueDate = utcPtr(in.DueDate)
		next.CategoryID = nonNil(in.CategoryID)
		next.ParentID = nonNil(in.ParentID)
		next.UpdatedAt = s.now().UTC()

		if err := s.checkCategory(ctx, s.categories.WithTx(tx), userID, next.CategoryID); err != nil {
			return err
		}
		if parentChanged(task.ParentID, next.ParentID) && next.ParentID != nil {
			if err := s.checkParent(ctx, tasks, userID, taskID, *next.ParentID); err != nil {
				return err
			}
		}

		if in.Status != "" && in.Status != next.Status {
			next, err = domain.ApplyStatusTransition(next, in.Status, s.now())
			if err != nil {
				return err
			}
		}

		if err := next.Validate(); err != nil {
			return validationError(err)
		}
		if err := tasks.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, NewServiceError("task", "update", err)
	}

	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := ownedTask(ctx, s.tasks, userID, taskID); err != nil {
		return NewServiceError("task", "delete", err)
	}
	if err := s.tasks.SoftDelete(ctx, taskID, s.now()); err != nil {
		return NewServiceError("task", "delete", err)
	}

	s.invalidate(ctx, userID)
	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", taskID.String()))
	return nil
}

func (s *taskServiceImpl) Toggle(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.mutate(ctx, userID, taskID, func(t *domain.Task) error {
		t.Toggle(s.now())
		return nil
	})
	if err != nil {
		return nil, NewServiceError("task", "toggle", err)
	}
	return task, nil
}

func (s *taskServiceImpl) SetStatus(
	ctx context.Context,
	userID, taskID uuid.UUID,
	status domain.Status,
) (*domain.Task, error) {
	task, err := s.mutate(ctx, userID, taskID, func(t *domain.Task) error {
		next, err := domain.ApplyStatusTransition(*t, status, s.now())
		if err != nil {
			return err
		}
		*t = next
		return nil
	})
	if err != nil {
		return nil, NewServiceError("task", "set_status", err)
	}
	return task, nil
}

func (s *taskServiceImpl) Subtasks(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Task, error) {
	if _, err := ownedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, NewServiceError("task", "subtasks", err)
	}
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("task", "subtasks", err)
	}
	return analytics.Filter(tasks, analytics.WithParent(taskID)), nil
}

func (s *taskServiceImpl) Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("task", "overdue", err)
	}
	overdue := analytics.Filter(tasks, analytics.Overdue(s.now()))
	return analytics.SortTasks(overdue, analytics.SortByDueDate, analytics.Ascending, nil), nil
}

func (s *taskServiceImpl) Tags(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Tag, error) {
	if _, err := ownedTask(ctx, s.tasks, userID, taskID); err != nil {
		return nil, NewServiceError("task", "tags", err)
	}
	tags, err := s.tags.ListForTask(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("task", "tags", err)
	}
	return tags, nil
}

func (s *taskServiceImpl) AttachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	if err := s.checkTagAccess(ctx, userID, taskID, tagID); err != nil {
		return NewServiceError("task", "attach_tag", err)
	}
	if err := s.tags.Attach(ctx, taskID, tagID); err != nil {
		return NewServiceError("task", "attach_tag", err)
	}
	return nil
}

func (s *taskServiceImpl) DetachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	if err := s.checkTagAccess(ctx, userID, taskID, tagID); err != nil {
		return NewServiceError("task", "detach_tag", err)
	}
	if err := s.tags.Detach(ctx, taskID, tagID); err != nil {
		return NewServiceError("task", "detach_tag", err)
	}
	return nil
}

func (s *taskServiceImpl) SuggestSubtasks(
	ctx context.Context,
	userID, taskID uuid.UUID,
	limit int,
	create bool,
) (*SuggestionResult, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsDisabled
	}

	parent, err := ownedTask(ctx, s.tasks, userID, taskID)
	if err != nil {
		return nil, NewServiceError("task", "suggest_subtasks", err)
	}

	titles, err := s.suggester.Suggest(ctx, parent.Title, parent.Description, limit)
	if err != nil {
		return nil, NewServiceError("task", "suggest_subtasks", err)
	}
	result := &SuggestionResult{Suggestions: titles}
	if !create {
		return result, nil
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)
		for _, title := range titles {
			child, err := domain.NewTask(userID, title, parent.Priority)
			if err != nil {
				return validationError(err)
			}
			child.ParentID = &parent.ID
			child.CategoryID = parent.CategoryID
			if err := tasks.Create(ctx, child); err != nil {
				return err
			}
			result.Created = append(result.Created, child)
		}
		return nil
	})
	if err != nil {
		return nil, NewServiceError("task", "suggest_subtasks", err)
	}

	s.invalidate(ctx, userID)
	logger.FromContextOrDefault(ctx, s.logger).Info("suggested subtasks created",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(result.Created)))
	return result, nil
}

// mutate locks an owned task, applies fn and saves the result in one
// transaction.
func (s *taskServiceImpl) mutate(
	ctx context.Context,
	userID, taskID uuid.UUID,
	fn func(*domain.Task) error,
) (*domain.Task, error) {
	var task *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		t, err := ownedTaskForUpdate(ctx, tasks, userID, taskID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return task, nil
}

func (s *taskServiceImpl) checkCategory(
	ctx context.Context,
	categories store.CategoryStore,
	userID uuid.UUID,
	categoryID *uuid.UUID,
) error {
	if categoryID == nil {
		return nil
	}
	category, err := categories.GetByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return ErrNotOwned
	}
	return nil
}

func (s *taskServiceImpl) checkParent(
	ctx context.Context,
	tasks store.TaskStore,
	userID, taskID, parentID uuid.UUID,
) error {
	if parentID == taskID {
		return hierarchy.ErrSelfParent
	}
	if _, err := ownedTask(ctx, tasks, userID, parentID); err != nil {
		return err
	}

	// Two moves validated against the same links could together close a
	// cycle, so hierarchy changes of one user run one at a time.
	if err := tasks.LockHierarchy(ctx, userID); err != nil {
		return err
	}
	links, err := tasks.ParentLinks(ctx, userID)
	if err != nil {
		return err
	}
	if err := hierarchy.NewValidator(hierarchy.Index(links)).Validate(ctx, taskID, parentID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("parent rejected",
			slog.String("task_id", taskID.String()),
			slog.String("parent_id", parentID.String()),
			slog.String("reason", err.Error()))
		return err
	}
	return nil
}

func (s *taskServiceImpl) checkTagAccess(ctx context.Context, userID, taskID, tagID uuid.UUID) error {
	if _, err := ownedTask(ctx, s.tasks, userID, taskID); err != nil {
		return err
	}
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag.UserID != userID {
		return ErrNotOwned
	}
	return nil
}

func (s *taskServiceImpl) taggedTaskIDs(ctx context.Context, userID, tagID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.UserID != userID {
		return nil, ErrNotOwned
	}
	ids, err := s.tags.TaskIDsWithTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// invalidate drops cached stats. Failures are logged; the entry still
// expires after its TTL.
func (s *taskServiceImpl) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to invalidate stats cache",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}

func ownedTask(ctx context.Context, tasks store.TaskStore, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotOwned
	}
	return task, nil
}

func ownedTaskForUpdate(ctx context.Context, tasks store.TaskStore, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := tasks.GetByIDForUpdate(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotOwned
	}
	return task, nil
}

// validationError tags a domain validation failure with domain.ErrValidation
// unless it already carries a more specific domain sentinel.
func validationError(err error) error {
	if errors.Is(err, domain.ErrInvalidEnumValue) || errors.Is(err, domain.ErrInvalidHierarchy) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}

func parentChanged(before, after *uuid.UUID) bool {
	if before == nil || after == nil {
		return before != after
	}
	return *before != *after
}

func nonNil(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
