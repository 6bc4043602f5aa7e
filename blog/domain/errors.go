package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories and stores when no record exists
// for the given key. Handlers map it to a 404; nothing below the REST layer
// writes HTTP responses.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected write: a missing or empty required
// field, or a field that would violate a storage constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
