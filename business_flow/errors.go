// Package businessflow contains the core business logic and use cases for onboarding workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Session-related errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Recruiter status errors
	ErrRegistrationMissing = errors.New("recruiter registration not found")
	ErrStatusUnavailable   = errors.New("recruiter status unavailable")

	// Profile gate errors
	ErrProfileNotFound    = errors.New("job seeker profile not found")
	ErrProfileFieldsEmpty = errors.New("profile requires name, email and phone")
	ErrNoPendingGate      = errors.New("no profile gate pending")

	// Apply flow errors
	ErrApplyAborted         = errors.New("application aborted")
	ErrNoApplyInProgress    = errors.New("no application in progress")
	ErrInvalidApplyState    = errors.New("operation not allowed in current application state")
	ErrCVNotParsed          = errors.New("CV has not been parsed yet")
	ErrConsultationRequired = errors.New("consultation need is required")
)

// BusinessError wraps domain errors with a stable code for the API surface.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

func IsRegistrationMissing(err error) bool {
	return errors.Is(err, ErrRegistrationMissing)
}

func IsStatusUnavailable(err error) bool {
	return errors.Is(err, ErrStatusUnavailable)
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsApplyAborted(err error) bool {
	return errors.Is(err, ErrApplyAborted)
}

func IsInvalidApplyState(err error) bool {
	return errors.Is(err, ErrInvalidApplyState)
}
