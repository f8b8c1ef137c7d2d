// Package errors provides structured error types for conceptmap.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the CLI, the HTTP API and the explorer can react to it
// without string matching:
//
//   - INVALID_*: input or oracle output that fails validation
//   - *_NOT_FOUND: unknown nodes or views
//   - ORACLE_TRANSPORT: the generative model call itself failed
//   - MUTATION_IN_FLIGHT / STALE_RESPONSE: session concurrency guards
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFragment, "edge %s->%s references unknown node", src, dst)
//	if errors.Is(err, errors.ErrCodeInvalidFragment) {
//	    // reject the mutation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOracleTransport, origErr, "call %s", url)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFragment Code = "INVALID_FRAGMENT"
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeViewNotFound Code = "VIEW_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Oracle errors
	ErrCodeOracleTransport Code = "ORACLE_TRANSPORT"
	ErrCodeTimeout         Code = "TIMEOUT"

	// Session state errors
	ErrCodeMutationInFlight Code = "MUTATION_IN_FLIGHT"
	ErrCodeStaleResponse    Code = "STALE_RESPONSE"

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
// For *Error types, returns the message without the code prefix.
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

// IsRejection reports whether err is one of the fail-closed mutation
// rejections: an invalid oracle fragment or a failed oracle call.
func IsRejection(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidFragment, ErrCodeOracleTransport, ErrCodeTimeout:
		return true
	}
	return false
}
