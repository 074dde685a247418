package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no decision has the requested identifier.
	ErrNotFound = errors.New("decision not found")

	// ErrCreateFailed is returned when a decision and its steps could not be stored.
	ErrCreateFailed = errors.New("failed to create decision")
)

// ValidationError reports a malformed or out-of-range field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
