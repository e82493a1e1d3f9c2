package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist, or is
	// soft-deleted and therefore not visible.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness rule.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or the database rejects it with a constraint violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update does not apply.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete does not apply.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a transaction cannot begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrTaskNotFound     = fmt.Errorf("%w: task", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("%w: tag", ErrNotFound)

	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)
	ErrTagExists      = fmt.Errorf("%w: tag name", ErrDuplicate)
)

// IsNotFoundError reports whether err is, or wraps, any not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is, or wraps, any duplicate error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds entity and operation context to a store failure.
type StoreError struct {
	Entity    string // e.g. "task", "category"
	Operation string // e.g. "create", "soft_delete"
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
