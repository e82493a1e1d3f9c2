package domain

import "time"

// SoftDeletable is implemented by entities that are hidden rather than
// removed when deleted.
type SoftDeletable interface {
	IsDeleted() bool
}

// Visible reports whether an entity should appear in listings and
// aggregates. Every read path filters through it.
func Visible[T SoftDeletable](item T) bool {
	return !item.IsDeleted()
}

// VisibleOnly returns the visible members of items, preserving order.
func VisibleOnly[T SoftDeletable](items []T) []T {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if Visible(item) {
			visible = append(visible, item)
		}
	}
	return visible
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// SoftDelete hides the task from listings without removing it.
func (t *Task) SoftDelete(now time.Time) {
	deletedAt := now.UTC()
	t.DeletedAt = &deletedAt
	t.UpdatedAt = deletedAt
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}

// SoftDelete hides the category without removing it.
func (c *Category) SoftDelete(now time.Time) {
	deletedAt := now.UTC()
	c.DeletedAt = &deletedAt
	c.UpdatedAt = deletedAt
}
