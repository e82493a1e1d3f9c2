package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DueSoonWindow is how far ahead of now a due date counts as "due soon".
const DueSoonWindow = 24 * time.Hour

// MaxTaskTitleLength is the maximum number of characters in a task title.
const MaxTaskTitleLength = 200

// Common validation errors for Task
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID     = errors.New("task user ID cannot be empty")
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTitleTooLong        = errors.New("task title is too long")
	ErrCompletedAtMismatch = errors.New("completed_at must be set if and only if status is DONE")
	ErrTaskIsOwnParent     = errors.New("task cannot be its own parent")
)

// Task is a unit of work owned by a single user. Tasks may be nested under a
// parent task, filed under a category and labelled with tags.
//
// CompletedAt is non-nil exactly when Status is StatusDone; use Complete,
// Reopen or ApplyStatusTransition rather than assigning Status directly.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// NewTask creates a TODO task for the given user. Priority defaults to MEDIUM
// when empty.
func NewTask(userID uuid.UUID, title string, priority Priority) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Priority:  priority,
		Status:    StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}

	if len([]rune(t.Title)) > MaxTaskTitleLength {
		return ErrTitleTooLong
	}

	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidEnumValue, t.Priority)
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEnumValue, t.Status)
	}

	if (t.Status == StatusDone) != (t.CompletedAt != nil) {
		return ErrCompletedAtMismatch
	}

	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrTaskIsOwnParent
	}

	return nil
}

// IsOverdue reports whether the task has a due date in the past and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(now)
}

// IsDueSoon reports whether the task is not done and due within DueSoonWindow
// of now, inclusive at both ends.
func (t *Task) IsDueSoon(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	due := *t.DueDate
	return !due.Before(now) && !due.After(now.Add(DueSoonWindow))
}

// IsCompleted reports whether the task is DONE.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusDone
}

// Complete marks the task DONE at now.
func (t *Task) Complete(now time.Time) {
	completedAt := now.UTC()
	t.Status = StatusDone
	t.CompletedAt = &completedAt
	t.UpdatedAt = completedAt
}

// Reopen moves a task back to TODO and clears its completion time. Any
// status held before completion is not restored.
func (t *Task) Reopen(now time.Time) {
	t.Status = StatusTodo
	t.CompletedAt = nil
	t.UpdatedAt = now.UTC()
}

// Toggle completes an open task or reopens a DONE one.
func (t *Task) Toggle(now time.Time) {
	if t.Status == StatusDone {
		t.Reopen(now)
		return
	}
	t.Complete(now)
}

// ApplyStatusTransition returns a copy of task moved to status.
//
// Entering DONE stamps CompletedAt with now; a task already DONE keeps its
// original completion time. Any other status clears CompletedAt.
func ApplyStatusTransition(task Task, status Status, now time.Time) (Task, error) {
	if !status.IsValid() {
		return task, fmt.Errorf("%w: status %q", ErrInvalidEnumValue, status)
	}

	next := task
	switch {
	case status == StatusDone && task.Status == StatusDone && task.CompletedAt != nil:
		completedAt := *task.CompletedAt
		next.CompletedAt = &completedAt
	case status == StatusDone:
		completedAt := now.UTC()
		next.CompletedAt = &completedAt
	default:
		next.CompletedAt = nil
	}

	next.Status = status
	next.UpdatedAt = now.UTC()
	return next, nil
}

// HasParent reports whether the task is nested under another task.
func (t *Task) HasParent() bool {
	return t.ParentID != nil && *t.ParentID != uuid.Nil
}
