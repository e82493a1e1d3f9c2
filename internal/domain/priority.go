package domain

import (
	"fmt"
	"strings"
)

// Priority is the urgency of a task. Priorities are totally ordered:
// LOW < MEDIUM < HIGH < URGENT.
type Priority string

// Priority values.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// priorityRanks declares the order explicitly; it does not depend on the
// order of the constants above.
var priorityRanks = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// Priorities returns every priority in ascending rank order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ParsePriority converts a name such as "high" or "HIGH" into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: priority %q", ErrInvalidEnumValue, s)
	}
	return p, nil
}

// IsValid reports whether p is a member of the priority set.
func (p Priority) IsValid() bool {
	_, ok := priorityRanks[p]
	return ok
}

// Rank returns the ordinal of p (1 for LOW through 4 for URGENT), or 0 for an
// invalid value.
func (p Priority) Rank() int {
	return priorityRanks[p]
}

// Less reports whether p ranks below other.
func (p Priority) Less(other Priority) bool {
	return p.Rank() < other.Rank()
}

func (p Priority) String() string {
	return string(p)
}
