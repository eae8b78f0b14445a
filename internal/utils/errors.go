package utils

import (
	"errors"
	"fmt"
)

// ValidationError represents an error occurring while validating request
// parameters or ingested observations.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError for a named field.
//
// Parameters:
//   - field: The request field or parameter the error refers to.
//   - message: The validation error message.
//
// Returns:
//   - An error interface wrapping the ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
//
// Parameters:
//   - field: The request field or parameter the error refers to.
//   - format: The format string.
//   - args: Arguments for the format string.
//
// Returns:
//   - An error interface wrapping the ValidationError.
func NewValidationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err is a ValidationError, so handlers can map
// it to a 400 response instead of a 500.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
