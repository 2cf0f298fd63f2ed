// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Every error returned to the delivery layer either wraps
// one of these, wraps store.ErrNotFound, or is treated as an internal fault.
var (
	// ErrValidation is returned when input is malformed or out of range.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition is returned when a request is well formed but the
	// current state does not allow it (ineligible mode, early submission, ...).
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict is returned when a concurrent or repeated write lost the
	// race for a single-shot update.
	ErrConflict = errors.New("conflict")

	// ErrInvariantViolation is returned when the store reports a state that
	// the schema should make impossible.
	ErrInvariantViolation = errors.New("invariant violation")
)

// Validation errors.
var (
	// ErrInvalidGuess is returned when a guess is outside 0-3.
	ErrInvalidGuess = fmt.Errorf("%w: guess must be between 0 and 3", ErrValidation)

	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrEmptyUserID is returned when a user ID is missing.
	ErrEmptyUserID = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)

	// ErrInvalidUsername is returned when a display name is empty or too long.
	ErrInvalidUsername = fmt.Errorf("%w: username must be between 1 and 32 characters", ErrValidation)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil the error still matches ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
