package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of domain error
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates that the input provided is invalid
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeInvalidState indicates an invalid state transition
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"

	// ErrCodeCaptureLaunch indicates that the capture process could not be started or did not finish in time
	ErrCodeCaptureLaunch ErrorCode = "CAPTURE_LAUNCH_ERROR"

	// ErrCodeCaptureParse indicates that the capture process output could not be understood
	ErrCodeCaptureParse ErrorCode = "CAPTURE_PARSE_ERROR"

	// ErrCodeResetUnresolved indicates that a reset phrase did not match any known pattern
	ErrCodeResetUnresolved ErrorCode = "RESET_UNRESOLVED"

	// ErrCodeConfig indicates a configuration error
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeTimezone indicates a timezone-related error
	ErrCodeTimezone ErrorCode = "TIMEZONE_ERROR"

	// ErrCodeMetrics indicates a metrics export error
	ErrCodeMetrics ErrorCode = "METRICS_ERROR"

	// ErrCodeFileOperation indicates a file operation error
	ErrCodeFileOperation ErrorCode = "FILE_OPERATION_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// NewDomainErrorWithCause creates a new domain error with an underlying cause
func NewDomainErrorWithCause(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// ErrInvalidInput creates an invalid input error
func ErrInvalidInput(field string, reason string) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// ErrInvalidState creates an invalid state error
func ErrInvalidState(entity string, currentState string, attemptedAction string) *DomainError {
	return NewDomainError(ErrCodeInvalidState,
		fmt.Sprintf("invalid state transition for %s: cannot %s in state %s", entity, attemptedAction, currentState)).
		WithDetails("entity", entity).
		WithDetails("currentState", currentState).
		WithDetails("attemptedAction", attemptedAction)
}

// IsErrorCode checks if an error, or any error it wraps, has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// Capture errors

// ErrCaptureLaunch creates an error for a capture process that could not be started
func ErrCaptureLaunch(path string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeCaptureLaunch, fmt.Sprintf("failed to launch capture process %s", path), err).
		WithDetails("path", path)
}

// ErrCaptureTimeout creates an error for a capture process that exceeded its time budget
func ErrCaptureTimeout(path string, timeoutSec int) *DomainError {
	return NewDomainError(ErrCodeCaptureLaunch, fmt.Sprintf("capture process %s did not finish within %ds", path, timeoutSec)).
		WithDetails("path", path).
		WithDetails("timeoutSeconds", timeoutSec)
}

// ErrCaptureParse creates an error for unparseable capture output
func ErrCaptureParse(reason string) *DomainError {
	return NewDomainError(ErrCodeCaptureParse, fmt.Sprintf("capture output not understood: %s", reason)).
		WithDetails("reason", reason)
}

// ErrCaptureParseWithCause creates a capture parse error with cause
func ErrCaptureParseWithCause(reason string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeCaptureParse, fmt.Sprintf("capture output not understood: %s", reason), err).
		WithDetails("reason", reason)
}

// ErrResetUnresolved creates an error describing a reset phrase that matched no pattern
func ErrResetUnresolved(text string) *DomainError {
	return NewDomainError(ErrCodeResetUnresolved, fmt.Sprintf("reset phrase not understood: %q", text)).
		WithDetails("text", text)
}

// Configuration errors

// ErrConfig creates a configuration error
func ErrConfig(field string, reason string) *DomainError {
	return NewDomainError(ErrCodeConfig, fmt.Sprintf("invalid configuration %s: %s", field, reason)).
		WithDetails("field", field).
		WithDetails("reason", reason)
}

// Timezone-specific errors

// ErrTimezone creates a timezone error
func ErrTimezone(operation string, reason string) *DomainError {
	return NewDomainError(ErrCodeTimezone, fmt.Sprintf("timezone error in %s: %s", operation, reason)).
		WithDetails("operation", operation).
		WithDetails("reason", reason)
}

// ErrTimezoneParse creates a timezone parsing error
func ErrTimezoneParse(timezoneName string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTimezone, fmt.Sprintf("failed to parse timezone: %s", timezoneName), err).
		WithDetails("timezoneName", timezoneName)
}

// Metrics errors

// ErrMetrics creates a metrics export error with cause
func ErrMetrics(operation string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeMetrics, fmt.Sprintf("metrics error in %s", operation), err).
		WithDetails("operation", operation)
}

// File operation errors

// ErrFileOperation creates a file operation error
func ErrFileOperation(operation string, path string, reason string) *DomainError {
	return NewDomainError(ErrCodeFileOperation, fmt.Sprintf("file operation error in %s: %s", operation, reason)).
		WithDetails("operation", operation).
		WithDetails("path", path).
		WithDetails("reason", reason)
}

// ErrFileOperationWithCause creates a file operation error with cause
func ErrFileOperationWithCause(operation string, path string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeFileOperation, fmt.Sprintf("file operation error in %s", operation), err).
		WithDetails("operation", operation).
		WithDetails("path", path)
}
