// Package errors provides structured error types for relplace.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - Messages that name the offending block pair, side or macro
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (constraints, designs, options)
//   - MISSING_*: A referenced entity does not exist
//   - PLACEMENT_*: Placement search failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingBlockName, "block %q not found", name)
//	if errors.Is(err, errors.ErrCodeMissingBlockName) {
//	    // Handle missing block
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDesign, origErr, "failed to load %s", path)
//
// Is and GetCode look through joined errors as well, so the result of
// a best-effort operation that returns errors.Join of several *Error values
// can still be matched by code.
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidConstraint Code = "INVALID_CONSTRAINT"
	ErrCodeInvalidDesign     Code = "INVALID_DESIGN"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidBlockName  Code = "INVALID_BLOCK_NAME"

	// Missing entity errors
	ErrCodeMissingBlockName Code = "MISSING_BLOCK_NAME"
	ErrCodeMissingType      Code = "MISSING_TYPE"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Placement errors
	ErrCodePlacementExhausted Code = "PLACEMENT_EXHAUSTED"
	ErrCodeGridOutOfRange     Code = "GRID_OUT_OF_RANGE"
	ErrCodeNotBound           Code = "NOT_BOUND"

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

// Is reports whether err, or any error it wraps or joins, is an *Error with
// the given code.
func Is(err error, code Code) bool {
	found := false
	walk(err, func(e *Error) bool {
		if e.Code == code {
			found = true
			return false
		}
		return true
	})
	return found
}

// GetCode extracts the first error code found in err.
// Returns empty string if err holds no *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Count returns how many *Error values with the given code err holds. Joined
// errors are counted individually.
func Count(err error, code Code) int {
	n := 0
	walk(err, func(e *Error) bool {
		if e.Code == code {
			n++
		}
		return true
	})
	return n
}

// Split returns the top-level errors of a joined error, err itself when it
// is not joined, or nil for a nil error.
func Split(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Join is errors.Join, re-exported so callers need a single errors import.
func Join(errs ...error) error {
	return errors.Join(errs...)
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

// walk visits every *Error in err's tree until fn returns false.
func walk(err error, fn func(*Error) bool) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok {
		if !fn(e) {
			return false
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if !walk(inner, fn) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), fn)
	}
	return true
}
