package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured
// error code. Codes follow the KL-<AREA>-<NNNN> format and are stable
// across releases; messages are informational only.
type DomainError struct {
	Code    string // Error code (e.g., "KL-KEY-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support. Two domain errors match when
// their codes match, regardless of details or cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Key errors (KEY).
var (
	// ErrKeyNotFound indicates the key has never been written.
	ErrKeyNotFound = NewDomainError("KL-KEY-4040", "key not found")

	// ErrKeyExpired indicates the key existed but passed its expiry instant.
	ErrKeyExpired = NewDomainError("KL-KEY-4041", "key expired")
)

// Command errors (CMD).
var (
	// ErrCommandMalformed indicates the frame did not decode to a command.
	ErrCommandMalformed = NewDomainError("KL-CMD-4000", "malformed command")

	// ErrCommandArguments indicates a recognized command is missing
	// required arguments.
	ErrCommandArguments = NewDomainError("KL-CMD-4001", "missing command arguments")

	// ErrCommandExpiry indicates the px option carried an unusable duration.
	ErrCommandExpiry = NewDomainError("KL-CMD-4002", "invalid expiry duration")

	// ErrCommandUnknown indicates an unrecognized command name.
	ErrCommandUnknown = NewDomainError("KL-CMD-4040", "unknown command")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("KL-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("KL-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("KL-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests from one client.
	ErrRateLimited = NewDomainError("KL-SYS-4290", "too many requests")
)
