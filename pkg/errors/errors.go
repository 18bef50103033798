// Package errors provides structured error types for tilecalc.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// The layout core only ever fails with one of three codes:
//   - INVALID_DIMENSION: a room or tile measurement is non-numeric, zero or negative
//   - UNSUPPORTED_PATTERN: the pattern is outside the closed set
//   - DEGENERATE_LAYOUT: an axis tile count resolved to zero
//
// The remaining codes belong to the outer layers (storage, server, rendering).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimension, "room length must be positive, got %g", v)
//	if errors.Is(err, errors.ErrCodeInvalidDimension) {
//	    // Surface as a validation message
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout core errors
	ErrCodeInvalidDimension   Code = "INVALID_DIMENSION"
	ErrCodeUnsupportedPattern Code = "UNSUPPORTED_PATTERN"
	ErrCodeDegenerateLayout   Code = "DEGENERATE_LAYOUT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeTooLarge      Code = "TOO_LARGE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnavailable Code = "UNAVAILABLE"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in the chain of err carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err is one of the deterministic input failures
// a caller should surface as a validation message rather than a server fault.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidDimension, ErrCodeUnsupportedPattern, ErrCodeDegenerateLayout,
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidID, ErrCodeTooLarge:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the HTTP status used by the API.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidDimension, ErrCodeUnsupportedPattern, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidID:
		return http.StatusBadRequest
	case ErrCodeDegenerateLayout, ErrCodeTooLarge:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
