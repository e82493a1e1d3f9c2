package analytics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// SortKey names the attribute a task listing is ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByTitle     SortKey = "title"
	SortByDueDate   SortKey = "due_date"
	SortByPriority  SortKey = "priority"
	SortByStatus    SortKey = "status"
	SortByCreatedAt SortKey = "created_at"
	SortByCategory  SortKey = "category"
)

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortKey validates a sort key. An empty string selects SortByDueDate.
func ParseSortKey(s string) (SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return SortByDueDate, nil
	}
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByTitle, SortByDueDate, SortByPriority, SortByStatus, SortByCreatedAt, SortByCategory:
		return k, nil
	default:
		return "", fmt.Errorf("%w: sort key %q", domain.ErrInvalidEnumValue, s)
	}
}

// ParseSortOrder validates a sort direction. An empty string selects Ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return o, nil
	default:
		return "", fmt.Errorf("%w: sort order %q", domain.ErrInvalidEnumValue, s)
	}
}

// SortTasks returns a sorted copy of tasks. The sort is stable in both
// directions: tasks with equal keys keep their input order.
//
// Tasks without a due date sort as if due infinitely late, and tasks
// without a (known) category sort after every named category. categoryNames
// is only consulted for SortByCategory and may be nil otherwise.
func SortTasks(tasks []*domain.Task, key SortKey, order SortOrder, categoryNames map[uuid.UUID]string) []*domain.Task {
	sorted := slices.Clone(tasks)
	compare := comparatorFor(key, categoryNames)

	slices.SortStableFunc(sorted, func(a, b *domain.Task) int {
		if order == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

func comparatorFor(key SortKey, categoryNames map[uuid.UUID]string) func(a, b *domain.Task) int {
	switch key {
	case SortByDueDate:
		return func(a, b *domain.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			default:
				return a.DueDate.Compare(*b.DueDate)
			}
		}
	case SortByPriority:
		return func(a, b *domain.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortByStatus:
		return func(a, b *domain.Task) int { return a.Status.Rank() - b.Status.Rank() }
	case SortByCreatedAt:
		return func(a, b *domain.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByCategory:
		name := func(t *domain.Task) (string, bool) {
			if t.CategoryID == nil {
				return "", false
			}
			n, ok := categoryNames[*t.CategoryID]
			return strings.ToLower(n), ok
		}
		return func(a, b *domain.Task) int {
			an, aok := name(a)
			bn, bok := name(b)
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			default:
				return strings.Compare(an, bn)
			}
		}
	default:
		return func(a, b *domain.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	}
}
