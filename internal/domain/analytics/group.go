package analytics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// GroupTasks buckets tasks by key. Within each bucket tasks keep their input
// order.
func GroupTasks[K comparable](tasks []*domain.Task, key func(*domain.Task) K) map[K][]*domain.Task {
	groups := make(map[K][]*domain.Task)
	for _, t := range tasks {
		k := key(t)
		groups[k] = append(groups[k], t)
	}
	return groups
}

// GroupField names a task attribute that listings can be grouped by.
type GroupField string

// Supported group fields.
const (
	GroupByStatus   GroupField = "status"
	GroupByPriority GroupField = "priority"
	GroupByCategory GroupField = "category"
)

// ParseGroupField validates a group field name.
func ParseGroupField(s string) (GroupField, error) {
	switch f := GroupField(strings.ToLower(strings.TrimSpace(s))); f {
	case GroupByStatus, GroupByPriority, GroupByCategory:
		return f, nil
	default:
		return "", fmt.Errorf("%w: group field %q", domain.ErrInvalidEnumValue, s)
	}
}

// KeyFunc returns the string key used to group tasks by f. Uncategorized
// tasks group under "none".
func (f GroupField) KeyFunc() func(*domain.Task) string {
	switch f {
	case GroupByPriority:
		return func(t *domain.Task) string { return t.Priority.String() }
	case GroupByCategory:
		return func(t *domain.Task) string {
			if t.CategoryID == nil || *t.CategoryID == uuid.Nil {
				return "none"
			}
			return t.CategoryID.String()
		}
	default:
		return func(t *domain.Task) string { return t.Status.String() }
	}
}
