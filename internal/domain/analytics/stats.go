// Package analytics summarizes collections of tasks: counts by status and
// priority, completion rates, per-category breakdowns, completion trends,
// along with the filtering, sorting and grouping used to present task lists.
//
// Every function here is pure. Soft-deleted tasks are dropped on entry, so
// callers may pass unfiltered slices.
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Stats is an aggregate over a user's visible tasks.
type Stats struct {
	Total          int                     `json:"total"`
	Completed      int                     `json:"completed"`
	Pending        int                     `json:"pending"`
	Overdue        int                     `json:"overdue"`
	CompletionRate float64                 `json:"completion_rate"`
	ByStatus       map[domain.Status]int   `json:"by_status"`
	ByPriority     map[domain.Priority]int `json:"by_priority"`
}

// Aggregate computes Stats for tasks as of now. ByStatus and ByPriority
// always contain every member of their set, zero when absent.
func Aggregate(tasks []*domain.Task, now time.Time) Stats {
	visible := domain.VisibleOnly(tasks)

	byStatus := CountByStatus(visible)
	completed := byStatus[domain.StatusDone]

	overdue := 0
	for _, t := range visible {
		if t.IsOverdue(now) {
			overdue++
		}
	}

	return Stats{
		Total:          len(visible),
		Completed:      completed,
		Pending:        len(visible) - completed,
		Overdue:        overdue,
		CompletionRate: rate(completed, len(visible)),
		ByStatus:       byStatus,
		ByPriority:     CountByPriority(visible),
	}
}

// CountByStatus tallies visible tasks per status.
func CountByStatus(tasks []*domain.Task) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses()))
	for _, s := range domain.Statuses() {
		counts[s] = 0
	}
	for _, t := range tasks {
		if domain.Visible(t) && t.Status.IsValid() {
			counts[t.Status]++
		}
	}
	return counts
}

// CountByPriority tallies visible tasks per priority.
func CountByPriority(tasks []*domain.Task) map[domain.Priority]int {
	counts := make(map[domain.Priority]int, len(domain.Priorities()))
	for _, p := range domain.Priorities() {
		counts[p] = 0
	}
	for _, t := range tasks {
		if domain.Visible(t) && t.Priority.IsValid() {
			counts[t.Priority]++
		}
	}
	return counts
}

// CountByCategory tallies visible tasks per category. Uncategorized tasks
// are counted under uuid.Nil.
func CountByCategory(tasks []*domain.Task) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, t := range tasks {
		if !domain.Visible(t) {
			continue
		}
		key := uuid.Nil
		if t.CategoryID != nil {
			key = *t.CategoryID
		}
		counts[key]++
	}
	return counts
}

// CompletionRate returns the fraction of visible tasks that are DONE, or 0
// for an empty collection.
func CompletionRate(tasks []*domain.Task) float64 {
	visible := domain.VisibleOnly(tasks)
	completed := 0
	for _, t := range visible {
		if t.IsCompleted() {
			completed++
		}
	}
	return rate(completed, len(visible))
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
