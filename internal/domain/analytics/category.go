package analytics

import (
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// CategoryStats is the status breakdown of one category's tasks.
type CategoryStats struct {
	CategoryID     uuid.UUID             `json:"category_id"`
	Name           string                `json:"name"`
	Color          string                `json:"color"`
	TotalTasks     int                   `json:"total_tasks"`
	CompletedTasks int                   `json:"completed_tasks"`
	CompletionRate float64               `json:"completion_rate"`
	ByStatus       map[domain.Status]int `json:"by_status"`
}

// CategoryBreakdown returns one entry per visible category, in input order.
// Deleted categories and deleted tasks are skipped.
func CategoryBreakdown(categories []*domain.Category, tasks []*domain.Task) []CategoryStats {
	byCategory := GroupTasks(domain.VisibleOnly(tasks), func(t *domain.Task) uuid.UUID {
		if t.CategoryID == nil {
			return uuid.Nil
		}
		return *t.CategoryID
	})

	result := make([]CategoryStats, 0, len(categories))
	for _, c := range domain.VisibleOnly(categories) {
		members := byCategory[c.ID]
		byStatus := CountByStatus(members)
		completed := byStatus[domain.StatusDone]

		result = append(result, CategoryStats{
			CategoryID:     c.ID,
			Name:           c.Name,
			Color:          c.Color,
			TotalTasks:     len(members),
			CompletedTasks: completed,
			CompletionRate: rate(completed, len(members)),
			ByStatus:       byStatus,
		})
	}
	return result
}
