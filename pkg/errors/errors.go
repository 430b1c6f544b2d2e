// Package errors provides structured error types for keyplate.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that point at the offending input
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_LAYOUT, NO_KEYS: Layout interpretation failures
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unit must be positive, got %g", unit)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Layout errors keep the fragment that caused them
//	err := errors.Malformed(fragment, cause, "row %d is not an array", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Layout errors. Both are terminal for the document being interpreted.
	ErrCodeMalformedLayout Code = "MALFORMED_LAYOUT"
	ErrCodeNoKeys          Code = "NO_KEYS"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	// Fragment is the original input text the error refers to, kept verbatim
	// for diagnostics. Only set for layout errors.
	Fragment string
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

// Malformed creates a MALFORMED_LAYOUT error that retains the offending
// fragment text. cause may be nil.
func Malformed(fragment string, cause error, format string, args ...any) *Error {
	return &Error{
		Code:     ErrCodeMalformedLayout,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
		Fragment: fragment,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
// For *Error types, returns the message without the code prefix. Layout
// errors keep their cause, which names the offending field or token.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == ErrCodeMalformedLayout && e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// FragmentOf returns the input fragment attached to the first *Error in the
// chain, or "" if there is none.
func FragmentOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fragment
	}
	return ""
}
