package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEnumValue is returned when a status, priority or other
	// enumerated value is not a member of its set.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrInvalidHierarchy is returned when assigning a parent would make a
	// task its own ancestor, or when a stored parent chain is already cyclic.
	ErrInvalidHierarchy = errors.New("invalid task hierarchy")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
