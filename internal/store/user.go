package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create validates the user, hashes its plaintext Password and saves it.
	// Returns ErrEmailExists or ErrUsernameExists on a uniqueness conflict.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail looks a user up by (case-insensitive) email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername looks a user up by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update saves profile fields. When user.Password is non-empty it is
	// hashed and replaces the stored hash.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user and, by cascade, everything they own.
	Delete(ctx context.Context, id uuid.UUID) error

	WithTx(tx *sql.Tx) UserStore
}
