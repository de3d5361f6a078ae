package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Engine errors. These are the kinds apply and revert report to callers.
	ErrIO             ErrorCode = "IO"
	ErrLayoutConflict ErrorCode = "LAYOUT_CONFLICT"
	ErrCorruptJournal ErrorCode = "CORRUPT_JOURNAL"
	ErrScanEntry      ErrorCode = "SCAN_ENTRY"

	// Session errors
	ErrNotInitialized ErrorCode = "NOT_INITIALIZED"
	ErrLocked         ErrorCode = "LOCKED"
)

// MirageError represents a structured error with code and details
type MirageError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MirageError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MirageError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MirageError) Is(target error) bool {
	var targetErr *MirageError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MirageError with the given code and message
func New(code ErrorCode, message string) *MirageError {
	return &MirageError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MirageError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MirageError {
	return &MirageError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MirageError
func Wrap(err error, code ErrorCode, message string) *MirageError {
	if err == nil {
		return nil
	}
	return &MirageError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MirageError {
	if err == nil {
		return nil
	}
	return &MirageError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// IOf wraps a filesystem failure on path as an IO error. Errors that already
// carry a code are returned unchanged so the innermost classification wins.
func IOf(err error, path string, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var mErr *MirageError
	if errors.As(err, &mErr) {
		return err
	}
	return Wrapf(err, ErrIO, format, args...).WithDetail("path", path)
}

// WithDetail adds a detail to the error
func (e *MirageError) WithDetail(key string, value interface{}) *MirageError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MirageError) WithDetails(details map[string]interface{}) *MirageError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mErr *MirageError
	if errors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MirageError
func GetErrorCode(err error) ErrorCode {
	var mErr *MirageError
	if errors.As(err, &mErr) {
		return mErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MirageError
func GetErrorDetails(err error) map[string]interface{} {
	var mErr *MirageError
	if errors.As(err, &mErr) {
		return mErr.Details
	}
	return nil
}
