package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Predicate selects tasks.
type Predicate func(*domain.Task) bool

// Filter returns the visible tasks that satisfy every predicate, in input
// order.
func Filter(tasks []*domain.Task, preds ...Predicate) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
next:
	for _, t := range tasks {
		if !domain.Visible(t) {
			continue
		}
		for _, p := range preds {
			if !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// Completed selects DONE tasks.
func Completed(t *domain.Task) bool { return t.Status == domain.StatusDone }

// Pending selects tasks that are not DONE.
func Pending(t *domain.Task) bool { return t.Status != domain.StatusDone }

// HighPriority selects HIGH and URGENT tasks.
func HighPriority(t *domain.Task) bool {
	return !t.Priority.Less(domain.PriorityHigh)
}

// WithStatus selects tasks in status s.
func WithStatus(s domain.Status) Predicate {
	return func(t *domain.Task) bool { return t.Status == s }
}

// WithPriority selects tasks with priority p.
func WithPriority(p domain.Priority) Predicate {
	return func(t *domain.Task) bool { return t.Priority == p }
}

// InCategory selects tasks filed under categoryID.
func InCategory(categoryID uuid.UUID) Predicate {
	return func(t *domain.Task) bool {
		return t.CategoryID != nil && *t.CategoryID == categoryID
	}
}

// WithParent selects direct children of parentID. uuid.Nil selects
// top-level tasks.
func WithParent(parentID uuid.UUID) Predicate {
	return func(t *domain.Task) bool {
		if parentID == uuid.Nil {
			return !t.HasParent()
		}
		return t.HasParent() && *t.ParentID == parentID
	}
}

// Overdue selects tasks past their due date as of now.
func Overdue(now time.Time) Predicate {
	return func(t *domain.Task) bool { return t.IsOverdue(now) }
}

// DueSoon selects open tasks due within domain.DueSoonWindow of now.
func DueSoon(now time.Time) Predicate {
	return func(t *domain.Task) bool { return t.IsDueSoon(now) }
}

// DueToday selects tasks due on the same calendar day as now, in now's
// location.
func DueToday(now time.Time) Predicate {
	start := startOfDay(now)
	end := start.AddDate(0, 0, 1)
	return dueWithin(start, end)
}

// DueThisWeek selects tasks due between today and seven days from today,
// inclusive, by calendar date.
func DueThisWeek(now time.Time) Predicate {
	start := startOfDay(now)
	end := start.AddDate(0, 0, 8)
	return dueWithin(start, end)
}

func dueWithin(start, end time.Time) Predicate {
	return func(t *domain.Task) bool {
		if t.DueDate == nil {
			return false
		}
		due := t.DueDate.In(start.Location())
		return !due.Before(start) && due.Before(end)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
