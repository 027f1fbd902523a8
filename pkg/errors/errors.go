// Package errors provides structured error types for svg2pdf.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, desktop and watch front-ends
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: usage errors, reported before any conversion is attempted
//   - *_NOT_FOUND: missing inputs
//   - *_FAILED: rendering failures, per file or per run
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDPI, "DPI must be greater than zero")
//	if errors.IsUsage(err) {
//	    // nothing was converted
//	}
//
//	// Wrap delegate failures
//	err := errors.Wrap(errors.ErrCodeRender, origErr, "render %s", input)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Usage errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidDPI    Code = "INVALID_DPI"
	ErrCodeInvalidOutput Code = "INVALID_OUTPUT"

	// Missing resources
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeBackendNotFound Code = "BACKEND_NOT_FOUND"

	// Conversion errors
	ErrCodeRender           Code = "RENDER_FAILED"
	ErrCodeConversionFailed Code = "CONVERSION_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// usageCodes are the codes reported before any conversion takes place.
var usageCodes = map[Code]bool{
	ErrCodeInvalidInput:    true,
	ErrCodeInvalidDPI:      true,
	ErrCodeInvalidOutput:   true,
	ErrCodeBackendNotFound: true,
}

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsUsage reports whether err is a usage error (bad flags, bad DPI,
// non-directory output for a multi-file run, unknown backend).
func IsUsage(err error) bool {
	return usageCodes[GetCode(err)]
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
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
