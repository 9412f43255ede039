package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the claim workflow. Components mark their failures with
// one of these so callers can branch on the failure class without inspecting
// messages.
var (
	ErrSessionInvalid      = new(ErrCodeSessionInvalid, "storefront session is not authenticated")
	ErrFeedUnavailable     = new(ErrCodeFeedUnavailable, "promotions feed unavailable")
	ErrTimeout             = new(ErrCodeTimeout, "operation timed out")
	ErrChallengeUnresolved = new(ErrCodeChallengeUnresolved, "verification challenge unresolved")
	ErrCartUnreconciled    = new(ErrCodeCartUnreconciled, "cart still holds paid items")
	ErrNotFound            = new(ErrCodeNotFound, "resource not found")
	ErrValidation          = new(ErrCodeValidation, "validation error")
	ErrHTTPClient          = new(ErrCodeHTTPClient, "http client error")
	ErrSystem              = new(ErrCodeSystemError, "system error")
)

const (
	ErrCodeSessionInvalid      = "session_invalid"
	ErrCodeFeedUnavailable     = "feed_unavailable"
	ErrCodeTimeout             = "timeout"
	ErrCodeChallengeUnresolved = "challenge_unresolved"
	ErrCodeCartUnreconciled    = "cart_unreconciled"
	ErrCodeNotFound            = "not_found"
	ErrCodeValidation          = "validation_error"
	ErrCodeHTTPClient          = "http_client_error"
	ErrCodeSystemError         = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsTimeout reports whether err belongs to the timeout class. The browser
// driver marks every expired bounded wait with ErrTimeout, and the top-level
// retry policy keys off this.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsSessionInvalid checks if an error is a session invalid error
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}

// IsFeedUnavailable checks if an error is a feed unavailable error
func IsFeedUnavailable(err error) bool {
	return errors.Is(err, ErrFeedUnavailable)
}

// IsChallengeUnresolved checks if an error is a challenge unresolved error
func IsChallengeUnresolved(err error) bool {
	return errors.Is(err, ErrChallengeUnresolved)
}

// IsCartUnreconciled checks if an error is a cart unreconciled error
func IsCartUnreconciled(err error) bool {
	return errors.Is(err, ErrCartUnreconciled)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}
