package http

import (
	"errors"
	"fmt"
	"net/http"

	apperr "FinSignal/pkg/errors"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithError wraps an underlying error. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError("ERR_NOT_FOUND", message, http.StatusNotFound)
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", message, http.StatusBadRequest)
}

// BadGatewayError creates a 502 error.
func BadGatewayError(message string) *AppError {
	return NewAppError("ERR_BAD_GATEWAY", message, http.StatusBadGateway)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", message, http.StatusInternalServerError)
}

// FromError maps a coded domain error to an AppError. fallback is the message
// used for anything that is not a client error; internal detail stays in Err.
func FromError(err error, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput:
		var e *apperr.Error
		if errors.As(err, &e) {
			return BadRequestError(e.Message).WithError(err)
		}
		return BadRequestError("invalid request").WithError(err)
	case apperr.ErrCodeInsufficientData:
		return BadRequestError("insufficient data").WithError(err)
	case apperr.ErrCodeUpstreamDataUnavailable:
		var e *apperr.Error
		if errors.As(err, &e) {
			return NotFoundError(e.Message).WithError(err)
		}
		return NotFoundError("no data found").WithError(err)
	case apperr.ErrCodePredictorFailure:
		return BadGatewayError(fallback).WithError(err)
	default:
		return InternalError(fallback).WithError(err)
	}
}
