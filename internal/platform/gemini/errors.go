package gemini

import "errors"

var (
	// ErrInvalidConfig is returned when the suggester cannot be configured.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyTitle is returned when asked to suggest subtasks for an untitled task.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidResponse is returned when the model answer cannot be used.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters block the answer.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when retries are exhausted.
	ErrTransientFailure = errors.New("gemini temporarily unavailable")
)
