// Package errors provides coded errors shared by the indicator engine and the
// service layers around it.
//
// Code ranges:
//   - General errors (1-99)
//   - Validation errors (100-199): bad input, not enough bars
//   - Data/Resource errors (200-299): missing market data, storage failures
//   - Indicator errors (300-399): per-indicator computation failures
//   - Collaborator errors (700-799): market data provider and predictor failures
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeUpstreamDataUnavailable, "no data for %s", symbol)
//	if errors.HasCode(err, errors.ErrCodeUpstreamDataUnavailable) { ... }
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
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause with a new Error carrying code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps cause with a new Error carrying code and a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
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
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from err. InsufficientDataError maps to
// ErrCodeInsufficientData; anything else that is not an *Error yields
// ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}
	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned when a series is shorter than the
// window a calculation needs.
type InsufficientDataError struct {
	Indicator string
	Required  int
	Actual    int
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(indicator string, required, actual int) *InsufficientDataError {
	return &InsufficientDataError{Indicator: indicator, Required: required, Actual: actual}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	if e.Indicator == "" {
		return fmt.Sprintf("insufficient data: need %d bars, have %d", e.Required, e.Actual)
	}
	return fmt.Sprintf("insufficient data for %s: need %d bars, have %d", e.Indicator, e.Required, e.Actual)
}

// IsInsufficientDataError checks the error chain for an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError
	return errors.As(err, &insufficientErr)
}
