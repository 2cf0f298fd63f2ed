package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/biogames/biogames-api/internal/api/shared"
	"github.com/biogames/biogames-api/internal/domain"
	"github.com/biogames/biogames-api/internal/service"
	"github.com/biogames/biogames-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes by their
// taxonomy root. Anything unrecognized is an internal fault.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrPrecondition),
		errors.Is(err, domain.ErrConflict),
		isValidatorError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes the raw error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrGameNotFound):
		return "Game not found"
	case errors.Is(err, store.ErrChallengeNotFound):
		return "Challenge not found"
	case errors.Is(err, store.ErrCoreNotFound):
		return "Core not found"
	case errors.Is(err, service.ErrImageNotFound):
		return "Core image not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrModeNotEligible):
		return "Not eligible for this game mode"
	case errors.Is(err, service.ErrUserNotRegistered):
		return "User is not registered"
	case errors.Is(err, service.ErrUsernameNotSet):
		return "User has no username"
	case errors.Is(err, service.ErrNoCoresAvailable):
		return "No cores available"
	case errors.Is(err, service.ErrChallengeNotStarted):
		return "Challenge has not been started"
	case errors.Is(err, service.ErrSubmissionTooEarly):
		return "Submission too early"
	case errors.Is(err, service.ErrChallengeAlreadyScored):
		return "Challenge already scored"
	case errors.Is(err, service.ErrGameFinished):
		return "Game is already finished"
	case errors.Is(err, service.ErrGameNotScoreable):
		return "Game has no answered challenges"
	case errors.Is(err, service.ErrUsernameAlreadySet):
		return "Username already set"

	case errors.Is(err, domain.ErrInvalidGuess):
		return "Guess must be between 0 and 3"
	case errors.Is(err, domain.ErrEmptyUserID):
		return "user_id is required"
	case errors.Is(err, domain.ErrInvalidUsername):
		return "Username must be between 1 and 32 characters"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case isValidatorError(err):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	}

	return "An unexpected error occurred"
}

// HandleAPIError writes the error response for err. defaultMsg replaces the
// generic message for internal faults when given.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if reason := errorReason(err); reason != "" {
		opts = append(opts, shared.WithReason(reason))
	}
	var eligibility *service.EligibilityError
	if errors.As(err, &eligibility) && eligibility.ResumeGameID != nil {
		opts = append(opts, shared.WithResumeGameID(*eligibility.ResumeGameID))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// errorReason extends service.Reason to request validation failures.
func errorReason(err error) string {
	if isValidatorError(err) {
		return service.ReasonInvalidRequest
	}
	return service.Reason(err)
}

func isValidatorError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// SanitizeValidationError turns validator output into a short message
// naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
