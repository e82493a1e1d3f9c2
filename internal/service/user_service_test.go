package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const validPassword = "a-long-enough-password"

func storedUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$hash",
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
	}
}

func newUserService(t *testing.T, outcome txOutcome) (service.UserService, *mocks.UserStore, *mocks.PasswordVerifier) {
	t.Helper()
	users := new(mocks.UserStore)
	verifier := new(mocks.PasswordVerifier)
	t.Cleanup(func() {
		users.AssertExpectations(t)
		verifier.AssertExpectations(t)
	})
	return service.NewUserService(users, verifier, newDB(t, outcome), quietLogger()), users, verifier
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user with profile fields", func(t *testing.T) {
		t.Parallel()
		svc, users, _ := newUserService(t, noTx)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Username == "alice" &&
				u.Email == "alice@example.com" &&
				u.Password == validPassword &&
				u.FirstName == "Alice" &&
				u.LastName == "Liddell"
		})).Return(nil)

		user, err := svc.Register(context.Background(), service.RegisterInput{
			Username:  "alice",
			Email:     " Alice@Example.com ",
			Password:  validPassword,
			FirstName: " Alice ",
			LastName:  "Liddell",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", user.FullName())
	})

	t.Run("rejects short password before touching the store", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newUserService(t, noTx)

		_, err := svc.Register(context.Background(), service.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("rejects over-long name before touching the store", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newUserService(t, noTx)

		_, err := svc.Register(context.Background(), service.RegisterInput{
			Username:  "alice",
			Email:     "alice@example.com",
			Password:  validPassword,
			FirstName: strings.Repeat("a", domain.MaxNameLength+1),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrNameTooLong)
	})

	t.Run("reports duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, users, _ := newUserService(t, noTx)

		users.On("Create", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

		_, err := svc.Register(context.Background(), service.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: validPassword,
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	user := storedUser()
	lookupErr := errors.New("connection reset")

	tests := []struct {
		name    string
		login   string
		setup   func(users *mocks.UserStore, verifier *mocks.PasswordVerifier)
		wantErr error
	}{
		{
			name:  "by email",
			login: "alice@example.com",
			setup: func(users *mocks.UserStore, verifier *mocks.PasswordVerifier) {
				users.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
				verifier.On("Compare", user.HashedPassword, validPassword).Return(nil)
			},
		},
		{
			name:  "by username",
			login: "alice",
			setup: func(users *mocks.UserStore, verifier *mocks.PasswordVerifier) {
				users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
				verifier.On("Compare", user.HashedPassword, validPassword).Return(nil)
			},
		},
		{
			name:  "unknown user",
			login: "bob",
			setup: func(users *mocks.UserStore, _ *mocks.PasswordVerifier) {
				users.On("GetByUsername", mock.Anything, "bob").Return(nil, store.ErrUserNotFound)
			},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			login: "alice",
			setup: func(users *mocks.UserStore, verifier *mocks.PasswordVerifier) {
				users.On("GetByUsername", mock.Anything, "alice").Return(user, nil)
				verifier.On("Compare", user.HashedPassword, validPassword).Return(errors.New("mismatch"))
			},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:  "store failure",
			login: "alice",
			setup: func(users *mocks.UserStore, _ *mocks.PasswordVerifier) {
				users.On("GetByUsername", mock.Anything, "alice").Return(nil, lookupErr)
			},
			wantErr: lookupErr,
		},
		{
			name:    "empty login",
			login:   "  ",
			setup:   func(*mocks.UserStore, *mocks.PasswordVerifier) {},
			wantErr: service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, users, verifier := newUserService(t, noTx)
			tt.setup(users, verifier)

			got, err := svc.Authenticate(context.Background(), tt.login, validPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("updates names and email", func(t *testing.T) {
		t.Parallel()
		svc, users, _ := newUserService(t, commitTx)
		user := storedUser()

		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "new@example.com" && u.FirstName == "Al" && u.Password == ""
		})).Return(nil)

		updated, err := svc.UpdateProfile(context.Background(), user.ID, service.ProfileUpdate{
			FirstName: "Al",
			Email:     "New@Example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
	})

	t.Run("invalid email rolls back", func(t *testing.T) {
		t.Parallel()
		svc, users, _ := newUserService(t, rollbackTx)
		user := storedUser()

		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		_, err := svc.UpdateProfile(context.Background(), user.ID, service.ProfileUpdate{Email: "not-an-email"})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		svc, users, _ := newUserService(t, rollbackTx)
		user := storedUser()

		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

		_, err := svc.UpdateProfile(context.Background(), user.ID, service.ProfileUpdate{Email: "taken@example.com"})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()

	const next = "another-long-password"

	t.Run("confirmation mismatch", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newUserService(t, noTx)

		err := svc.ChangePassword(context.Background(), uuid.New(), validPassword, next, next+"x")
		assert.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("new password too short", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newUserService(t, noTx)

		err := svc.ChangePassword(context.Background(), uuid.New(), validPassword, "short", "short")
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("wrong current password", func(t *testing.T) {
		t.Parallel()
		svc, users, verifier := newUserService(t, rollbackTx)
		user := storedUser()

		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		verifier.On("Compare", user.HashedPassword, "wrong").Return(errors.New("mismatch"))

		err := svc.ChangePassword(context.Background(), user.ID, "wrong", next, next)
		assert.ErrorIs(t, err, service.ErrIncorrectPassword)
	})

	t.Run("success sets plaintext for hashing", func(t *testing.T) {
		t.Parallel()
		svc, users, verifier := newUserService(t, commitTx)
		user := storedUser()

		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		verifier.On("Compare", user.HashedPassword, validPassword).Return(nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Password == next
		})).Return(nil)

		require.NoError(t, svc.ChangePassword(context.Background(), user.ID, validPassword, next, next))
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	svc, users, _ := newUserService(t, noTx)
	id := uuid.New()
	users.On("Delete", mock.Anything, id).Return(nil).Once()
	require.NoError(t, svc.DeleteUser(context.Background(), id))

	missing := uuid.New()
	users.On("Delete", mock.Anything, missing).Return(store.ErrUserNotFound).Once()
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), missing), store.ErrNotFound)
}
