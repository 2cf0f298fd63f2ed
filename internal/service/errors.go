package service

import (
	"errors"
	"fmt"

	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/service/allocation"
	"github.com/biogames/biogames-api/internal/store"
)

// Sentinel errors returned by the game engine. Each wraps one of the
// domain taxonomy roots so the API layer can map it to a status code, and
// each has a machine-readable reason code (see Reason).
var (
	// ErrModeNotEligible is returned when the eligibility gate denies a mode.
	ErrModeNotEligible = fmt.Errorf("%w: not eligible for this mode", domain.ErrPrecondition)

	// ErrUserNotRegistered is returned when the user ID has no registration.
	ErrUserNotRegistered = fmt.Errorf("%w: user is not registered", domain.ErrPrecondition)

	// ErrUsernameNotSet is returned when a registered user has no display name yet.
	ErrUsernameNotSet = fmt.Errorf("%w: username has not been set", domain.ErrPrecondition)

	// ErrChallengeNotStarted is returned when a guess arrives before the image was fetched.
	ErrChallengeNotStarted = fmt.Errorf("%w: challenge has not been started", domain.ErrPrecondition)

	// ErrSubmissionTooEarly is returned when a guess arrives before the minimum dwell time.
	ErrSubmissionTooEarly = fmt.Errorf("%w: submission too early", domain.ErrPrecondition)

	// ErrGameFinished is returned when acting on a game that is already finished.
	ErrGameFinished = fmt.Errorf("%w: game is already finished", domain.ErrPrecondition)

	// ErrGameNotScoreable is returned when results are requested for a game
	// without a single answered challenge.
	ErrGameNotScoreable = fmt.Errorf("%w: game has no answered challenges", domain.ErrPrecondition)

	// ErrNoCoresAvailable is returned when a game would start with no challenges.
	ErrNoCoresAvailable = allocation.ErrNoCoresAvailable

	// ErrChallengeAlreadyScored is returned when a challenge already has a guess.
	ErrChallengeAlreadyScored = fmt.Errorf("%w: challenge already scored", domain.ErrConflict)

	// ErrUsernameAlreadySet is returned when assigning a second display name.
	ErrUsernameAlreadySet = fmt.Errorf("%w: username already set", domain.ErrConflict)
)

// Reason codes reported to clients alongside 4xx errors.
const (
	ReasonModeNotEligible        = "mode_not_eligible"
	ReasonUserNotRegistered      = "user_not_registered"
	ReasonUsernameNotSet         = "username_not_set"
	ReasonChallengeNotStarted    = "challenge_not_started"
	ReasonSubmissionTooEarly     = "submission_too_early"
	ReasonChallengeAlreadyScored = "challenge_already_scored"
	ReasonUsernameAlreadySet     = "username_already_set"
	ReasonGameFinished           = "game_finished"
	ReasonGameNotScoreable       = "game_not_scoreable"
	ReasonNoCoresAvailable       = "no_cores_available"
	ReasonInvalidGuess           = "invalid_guess"
	ReasonInvalidRequest         = "invalid_request"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrModeNotEligible, ReasonModeNotEligible},
	{ErrUserNotRegistered, ReasonUserNotRegistered},
	{ErrUsernameNotSet, ReasonUsernameNotSet},
	{ErrChallengeNotStarted, ReasonChallengeNotStarted},
	{ErrSubmissionTooEarly, ReasonSubmissionTooEarly},
	{ErrChallengeAlreadyScored, ReasonChallengeAlreadyScored},
	{ErrUsernameAlreadySet, ReasonUsernameAlreadySet},
	{ErrGameFinished, ReasonGameFinished},
	{ErrGameNotScoreable, ReasonGameNotScoreable},
	{ErrNoCoresAvailable, ReasonNoCoresAvailable},
	{domain.ErrInvalidGuess, ReasonInvalidGuess},
}

// Reason returns the reason code for err, or "" when err carries none.
// Validation errors without a more specific code report invalid_request.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	if errors.Is(err, domain.ErrValidation) {
		return ReasonInvalidRequest
	}
	return ""
}

// EligibilityError is returned when the gate denies a mode. ResumeGameID
// is set when the user already has a game of that mode to go back to.
type EligibilityError struct {
	Mode         domain.Mode
	ResumeGameID *int64
}

// Error implements the error interface.
func (e *EligibilityError) Error() string {
	if e.ResumeGameID != nil {
		return fmt.Sprintf("not eligible for %s: resume game %d", e.Mode, *e.ResumeGameID)
	}
	return fmt.Sprintf("not eligible for %s", e.Mode)
}

// Unwrap returns ErrModeNotEligible.
func (e *EligibilityError) Unwrap() error {
	return ErrModeNotEligible
}

// ServiceError is a custom error type for unexpected failures in a service
// operation. Expected conditions are returned as the sentinels above.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_game", "submit")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err for operation. Errors that already belong to
// the taxonomy (validation, precondition, conflict, not found) are
// returned unchanged so callers can match them directly.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isExpected(err) {
		return err
	}
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrPrecondition) ||
		errors.Is(err, domain.ErrConflict) ||
		store.IsNotFoundError(err)
}
