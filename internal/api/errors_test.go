package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/domain/hierarchy"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusInternalServerError},
		{name: "invalid token", err: auth.ErrInvalidToken, want: http.StatusUnauthorized},
		{name: "wrapped expired refresh", err: fmt.Errorf("refresh: %w", auth.ErrExpiredRefreshToken), want: http.StatusUnauthorized},
		{name: "bad credentials", err: service.NewServiceError("user", "authenticate", service.ErrInvalidCredentials), want: http.StatusUnauthorized},
		{name: "not owned", err: service.NewServiceError("task", "get", service.ErrNotOwned), want: http.StatusForbidden},
		{name: "task not found", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "category not found wrapped", err: service.NewServiceError("category", "delete", store.ErrCategoryNotFound), want: http.StatusNotFound},
		{name: "email exists", err: store.ErrEmailExists, want: http.StatusConflict},
		{name: "tag exists", err: store.ErrTagExists, want: http.StatusConflict},
		{name: "validation", err: fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTitle), want: http.StatusBadRequest},
		{name: "enum", err: fmt.Errorf("%w: status %q", domain.ErrInvalidEnumValue, "SOON"), want: http.StatusBadRequest},
		{name: "cycle", err: service.NewServiceError("task", "update", hierarchy.ErrDescendantParent), want: http.StatusBadRequest},
		{name: "invalid id", err: domain.ErrInvalidID, want: http.StatusBadRequest},
		{name: "password mismatch", err: service.ErrPasswordMismatch, want: http.StatusBadRequest},
		{name: "incorrect password", err: service.ErrIncorrectPassword, want: http.StatusBadRequest},
		{name: "llm disabled", err: service.ErrSuggestionsDisabled, want: http.StatusServiceUnavailable},
		{name: "queue full", err: job.ErrQueueFull, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "An unexpected error occurred"},
		{name: "task not found", err: store.ErrTaskNotFound, want: "Task not found"},
		{name: "self parent", err: hierarchy.ErrSelfParent, want: "A task cannot be its own parent"},
		{name: "descendant parent", err: hierarchy.ErrDescendantParent, want: "A task cannot be moved under one of its subtasks"},
		{name: "corrupt chain", err: hierarchy.ErrCorruptHierarchy, want: "Invalid task hierarchy"},
		{
			name: "validation keeps domain rule",
			err:  service.NewServiceError("category", "create", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidColor)),
			want: "Validation error: color must be a hex value like #1a2b3c",
		},
		{name: "enum", err: fmt.Errorf("%w: sort key %q", domain.ErrInvalidEnumValue, "size"), want: `Invalid value: sort key "size"`},
		{name: "username taken", err: store.ErrUsernameExists, want: "Username already exists"},
		{name: "queue full", err: job.ErrQueueFull, want: "Too many background jobs, try again later"},
		{
			name: "internal details hidden",
			err:  errors.New("pq: connection to postgres://admin:secret@db failed"),
			want: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "required",
			err:  errors.New("Key: 'LoginRequest.Login' Error:Field validation for 'Login' failed on the 'required' tag"),
			want: "Invalid Login: required field",
		},
		{
			name: "hex color",
			err:  errors.New("Key: 'CategoryRequest.Color' Error:Field validation for 'Color' failed on the 'hexcolor' tag"),
			want: "Invalid Color: must be a hex color like #1a2b3c",
		},
		{name: "other", err: errors.New("something else"), want: "Validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeValidationError(tt.err))
		})
	}
}
