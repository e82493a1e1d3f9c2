package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. The API layer maps each of them
// to an HTTP status.
var (
	// ErrNotOwned indicates the resource belongs to a different user.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// login or a wrong password. The two cases are deliberately identical.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrIncorrectPassword is returned when the current password supplied
	// for a password change does not match.
	ErrIncorrectPassword = errors.New("current password is incorrect")

	// ErrPasswordMismatch is returned when a new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")

	// ErrSuggestionsDisabled is returned when no language model is configured.
	ErrSuggestionsDisabled = errors.New("subtask suggestions are not configured")
)

// ServiceError adds the service and operation to a failure.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}
