package rmcloud

import (
	"errors"
	"fmt"
)

// Error is a failure reported by the document-storage service or detected
// while validating one of its responses. Errors carry a stable code and are
// compared by code, so errors.Is(err, ErrUserAuthFailure) matches any user
// authentication failure regardless of status or details.
type Error struct {
	Code       string // Error code (e.g., "RMC-USER-4010")
	Message    string // Human-readable message
	Details    string // Upstream text that explains the failure, if any
	StatusCode int    // HTTP status observed, 0 if not applicable
	Cause      error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithStatus returns a copy of the error carrying an HTTP status code.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.StatusCode = status
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// IsError checks if err is an *Error with the given code.
// If code is empty, it only checks if err is an *Error.
func IsError(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return code == "" || e.Code == code
	}
	return false
}

// ErrorCode extracts the error code from err if it is an *Error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusCode extracts the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// Device registration errors. The first three are detected by matching the
// literal text the service returns in place of a token.
var (
	// ErrInvalidOneTimeCode indicates the pairing code was rejected.
	ErrInvalidOneTimeCode = newError("RMC-DEV-4001", "invalid one-time code")

	// ErrUnknownDeviceType indicates the device description was rejected.
	ErrUnknownDeviceType = newError("RMC-DEV-4002", "unknown device type")

	// ErrWrongAPIVersion indicates the service no longer accepts this API version.
	ErrWrongAPIVersion = newError("RMC-DEV-4003", "using wrong API version")

	// ErrDeviceAuthFailure indicates registration failed without a known message.
	ErrDeviceAuthFailure = newError("RMC-DEV-4010", "device authentication failure")
)

// User token errors.
var (
	// ErrUserAuthFailure indicates the user token exchange did not return 200.
	ErrUserAuthFailure = newError("RMC-USER-4010", "user authentication failure")
)

// Storage host discovery errors.
var (
	// ErrUnexpectedStorageStatus indicates discovery returned a Status other than "OK".
	ErrUnexpectedStorageStatus = newError("RMC-HOST-5020", "unexpected status in response")
)

// Document errors.
var (
	// ErrUploadRequestFailed indicates an upload request item reported Success=false.
	ErrUploadRequestFailed = newError("RMC-DOC-4001", "upload request failed")

	// ErrBlobUploadFailed indicates the blob PUT to an upload slot was rejected.
	ErrBlobUploadFailed = newError("RMC-DOC-4002", "blob upload failed")

	// ErrUnexpectedUploadURLCount indicates the upload request did not yield exactly one URL.
	ErrUnexpectedUploadURLCount = newError("RMC-DOC-5020", "unexpected number of upload URLs returned")
)
