package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6c757d"

// Common validation errors for Category
var (
	ErrEmptyCategoryID     = errors.New("category ID cannot be empty")
	ErrEmptyCategoryUserID = errors.New("category user ID cannot be empty")
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrInvalidColor        = errors.New("color must be a hex value like #1a2b3c")
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category groups a user's tasks. Tasks reference at most one category.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// NewCategory creates a category for the given user. An empty color falls
// back to DefaultCategoryColor.
func NewCategory(userID uuid.UUID, name, description, color string) (*Category, error) {
	if color == "" {
		color = DefaultCategoryColor
	}

	now := time.Now().UTC()
	category := &Category{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCategoryID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyCategoryUserID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if !hexColorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}
