package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const userColumns = `id, username, email, hashed_password, first_name, last_name, created_at, updated_at`

// PostgresUserStore implements store.UserStore. Plaintext passwords are
// hashed with bcrypt before they reach the database.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a user store. A bcryptCost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, bcryptCost: s.bcryptCost, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.hashPassword(user); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Username, user.Email, user.HashedPassword,
		user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		mapped := mapUserUniqueViolation(err)
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, strings.TrimSpace(username))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword,
		&u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &u, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if user.Password != "" {
		if err := s.hashPassword(user); err != nil {
			return err
		}
	}
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3,
		    first_name = $4, last_name = $5, updated_at = $6
		WHERE id = $7`,
		user.Username, user.Email, user.HashedPassword,
		user.FirstName, user.LastName, user.UpdatedAt, user.ID,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapUserUniqueViolation(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}

// hashPassword replaces the plaintext password with its bcrypt hash.
func (s *PostgresUserStore) hashPassword(user *domain.User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = string(hash)
	user.Password = ""
	return nil
}

func mapUserUniqueViolation(err error) error {
	if !IsUniqueViolation(err) {
		return MapError(err)
	}
	if mapped := MapUniqueViolation(err, "users_username_key", store.ErrUsernameExists); errors.Is(mapped, store.ErrUsernameExists) {
		return mapped
	}
	return MapUniqueViolation(err, "", store.ErrEmailExists)
}
