// Package errors provides structured error types for forcegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the layout core, CLI and server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Only validation errors are surfaced by the layout core. The remaining
// layout codes describe conditions the core recovers from on its own; they
// exist so diagnostics (logs, stats, metrics) can name what was recovered.
//
//   - DUPLICATE_NODE: two input nodes share an id (fatal to a build)
//   - INVALID_INPUT: malformed input (bad container size, unreadable files, bad config)
//   - DANGLING_EDGE: an edge names an unknown node (edge dropped)
//   - NUMERIC_INSTABILITY: a force evaluated to NaN/Inf (force zeroed)
//   - DEGENERATE_CONTENT: zero-size content box (identity transform)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", id)
//	if errors.IsValidation(err) {
//	    // render placeholder
//	}
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
	ErrCodeDuplicateNode Code = "DUPLICATE_NODE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Recovered layout conditions
	ErrCodeDanglingEdge       Code = "DANGLING_EDGE"
	ErrCodeNumericInstability Code = "NUMERIC_INSTABILITY"
	ErrCodeDegenerateContent  Code = "DEGENERATE_CONTENT"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

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

// IsValidation reports whether err is an input validation failure, the only
// class of error the layout core surfaces to callers.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateNode, ErrCodeInvalidInput:
		return true
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
