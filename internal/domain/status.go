package domain

import (
	"fmt"
	"strings"
)

// Status is the workflow state of a task, ordered
// TODO < IN_PROGRESS < REVIEW < DONE < ARCHIVED.
type Status string

// Status values.
const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusDone       Status = "DONE"
	StatusArchived   Status = "ARCHIVED"
)

var statusRanks = map[Status]int{
	StatusTodo:       1,
	StatusInProgress: 2,
	StatusReview:     3,
	StatusDone:       4,
	StatusArchived:   5,
}

// Statuses returns every status in ascending rank order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusArchived}
}

// ParseStatus converts a name such as "in_progress" into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalidEnumValue, s)
	}
	return st, nil
}

// IsValid reports whether s is a member of the status set.
func (s Status) IsValid() bool {
	_, ok := statusRanks[s]
	return ok
}

// Rank returns the ordinal of s, or 0 for an invalid value.
func (s Status) Rank() int {
	return statusRanks[s]
}

// Less reports whether s ranks below other.
func (s Status) Less(other Status) bool {
	return s.Rank() < other.Rank()
}

func (s Status) String() string {
	return string(s)
}
