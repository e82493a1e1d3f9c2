package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
}

// UserService provides account and profile operations.
type UserService interface {
	// Register creates a user. Username and email must be unused.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate resolves a username or email plus password to a user.
	// Any mismatch yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)

	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile changes names and email. A changed email must be unused.
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*domain.User, error)

	// ChangePassword requires the current password and a matching confirmation.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next, confirm string) error

	// DeleteUser removes the user and everything they own.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userServiceImpl struct {
	userStore store.UserStore
	verifier  auth.PasswordVerifier
	db        store.TxBeginner
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	verifier auth.PasswordVerifier,
	db store.TxBeginner,
	logger *slog.Logger,
) UserService {
	if userStore == nil || verifier == nil || db == nil {
		panic("user service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		db:        db,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	if err := user.Validate(); err != nil {
		return nil, NewServiceError("user", "register", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration rejected: duplicate", slog.String("username", user.Username))
		} else {
			log.Error("failed to create user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userStore.GetByEmail(ctx, login)
	} else {
		user, err = s.userStore.GetByUsername(ctx, login)
	}
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		user.FirstName = strings.TrimSpace(in.FirstName)
		user.LastName = strings.TrimSpace(in.LastName)
		if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
			user.Email = email
		}
		user.UpdatedAt = time.Now().UTC()

		if err := user.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("user", "update_profile", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("profile updated",
		slog.String("user_id", userID.String()))
	return updated, nil
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if err := domain.ValidatePassword(next); err != nil {
		return NewServiceError("user", "change_password", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.verifier.Compare(user.HashedPassword, current); err != nil {
			return ErrIncorrectPassword
		}

		user.Password = next
		user.UpdatedAt = time.Now().UTC()
		return txStore.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, ErrIncorrectPassword) {
			return err
		}
		return NewServiceError("user", "change_password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password changed",
		slog.String("user_id", userID.String()))
	return nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userStore.Delete(ctx, userID); err != nil {
		return NewServiceError("user", "delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted",
		slog.String("user_id", userID.String()))
	return nil
}
