package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel roots. Entity-specific errors below wrap one of them so callers
// can test either the family or the exact entity with errors.Is.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")
)

var (
	ErrGameNotFound      = fmt.Errorf("%w: game", ErrNotFound)
	ErrChallengeNotFound = fmt.Errorf("%w: challenge", ErrNotFound)
	ErrCoreNotFound      = fmt.Errorf("%w: core", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)

	// ErrUserExists is returned when a user_id is registered twice.
	ErrUserExists = fmt.Errorf("%w: user", ErrDuplicate)
)

// IsNotFoundError reports whether err belongs to the not-found family.
func IsNotFoundError(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateError reports whether err belongs to the duplicate family.
func IsDuplicateError(err error) bool { return errors.Is(err, ErrDuplicate) }

// StoreError records which entity and operation a storage failure came from.
// Sentinels carried in Err stay reachable through errors.Is.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError builds a StoreError; err may be nil.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
