package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidEnumValue),
		errors.Is(err, domain.ErrInvalidHierarchy),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest

	// Capacity and optional features
	case errors.Is(err, service.ErrSuggestionsDisabled),
		errors.Is(err, job.ErrQueueFull):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"
	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrTagExists):
		return "Tag already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Domain validation messages are written for end users.
	case errors.Is(err, domain.ErrInvalidHierarchy):
		return hierarchyMessage(err)
	case errors.Is(err, domain.ErrInvalidEnumValue):
		return "Invalid value: " + innermostMessage(err)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, service.ErrIncorrectPassword):
		return "Current password is incorrect"
	case errors.Is(err, service.ErrPasswordMismatch):
		return "New password and confirmation do not match"

	case errors.Is(err, service.ErrSuggestionsDisabled):
		return "Subtask suggestions are not available"
	case errors.Is(err, job.ErrQueueFull):
		return "Too many background jobs, try again later"

	default:
		return "An unexpected error occurred"
	}
}

// hierarchyMessage picks the specific hierarchy violation.
func hierarchyMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "its own parent"):
		return "A task cannot be its own parent"
	case strings.Contains(msg, "descendant"):
		return "A task cannot be moved under one of its subtasks"
	default:
		return "Invalid task hierarchy"
	}
}

// validationMessage strips the "validation failed" wrapper and returns the
// domain rule that was broken.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return "Validation error: " + msg[i+len(prefix):]
	}
	return "Validation error"
}

// innermostMessage returns the text after the last wrapping prefix.
func innermostMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Login' Error:Field validation for 'Login' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "hexcolor":
		return "must be a hex color like #1a2b3c"
	case "eqfield":
		return "does not match"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// fallback replaces the generic message for internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
