package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTagNameLength is the maximum number of characters in a tag name.
const MaxTagNameLength = 50

// Common validation errors for Tag
var (
	ErrEmptyTagID     = errors.New("tag ID cannot be empty")
	ErrEmptyTagUserID = errors.New("tag user ID cannot be empty")
	ErrEmptyTagName   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = errors.New("tag name is too long")
)

// Tag is a free-form label. A task may carry many tags and a tag may be
// attached to many tasks.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a tag for the given user.
func NewTag(userID uuid.UUID, name string) (*Tag, error) {
	tag := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTagID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTagUserID
	}
	if t.Name == "" {
		return ErrEmptyTagName
	}
	if len([]rune(t.Name)) > MaxTagNameLength {
		return ErrTagNameTooLong
	}
	return nil
}
