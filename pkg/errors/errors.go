// Package errors provides structured error types for MindCraft.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the editor, CLI and HTTP view
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for the status line
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the failure kinds of the mind-map model:
//   - INVALID_LABEL: blank node text on creation
//   - IO_FAILURE: a map file or store cannot be read or written
//   - MALFORMED_DOCUMENT: a loaded document lacks required structure
//   - NOT_FOUND: a named map is missing from a store
//   - INVALID_*: other input validation failures
//   - INTERNAL_*: unexpected internal errors
//
// Duplicate edges, self-edges and deletes of absent entities are not errors;
// the model treats them as silent no-ops.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLabel, "label must not be empty")
//	if errors.Is(err, errors.ErrCodeInvalidLabel) {
//	    // Keep the prompt open
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIOFailure, origErr, "save %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Model errors
	ErrCodeInvalidLabel      Code = "INVALID_LABEL"
	ErrCodeIOFailure         Code = "IO_FAILURE"
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
