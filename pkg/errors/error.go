// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, missing columns, bad config
//   - Data errors (200-299): Missing prices, non-monotonic timestamps; fatal for a run
//   - Strategy-contract errors (300-399): Position values outside the declared range
//   - Simulation errors (400-499): State machine failures
//   - Performance errors (500-599): Degenerate trajectories
//   - Result errors (600-699): Export and serialization failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeMissingPrice, "no close price at bar %d", i)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeMissingPrice) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// BarError identifies the first offending bar when a run fails on bad data.
type BarError struct {
	Index     int    // Zero-based index of the offending bar
	Timestamp string // Timestamp of the offending bar, RFC3339, empty if unknown
	Message   string // Human-readable message
}

// NewBarError creates a new BarError.
func NewBarError(index int, timestamp, message string) *BarError {
	return &BarError{
		Index:     index,
		Timestamp: timestamp,
		Message:   message,
	}
}

// NewBarErrorf creates a new BarError with a formatted message.
func NewBarErrorf(index int, timestamp, format string, args ...any) *BarError {
	return &BarError{
		Index:     index,
		Timestamp: timestamp,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *BarError) Error() string {
	if e.Timestamp != "" {
		return fmt.Sprintf("bar %d (%s): %s", e.Index, e.Timestamp, e.Message)
	}

	return fmt.Sprintf("bar %d: %s", e.Index, e.Message)
}

// IsBarError checks if an error is a BarError.
// It uses errors.As to check the error chain.
func IsBarError(err error) bool {
	var barErr *BarError

	return errors.As(err, &barErr)
}
