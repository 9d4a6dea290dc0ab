// Package errors provides structured error types for crossplot.
//
// Every error raised by the figure engine carries a machine-readable [Code].
// Codes are grouped into three categories that callers can branch on:
//   - Validation: bad construction-time input (unknown side, duplicate block
//     name, mismatched label length, unknown metric or linkage method)
//   - State: an operation requires a state the board has not reached yet
//     (asking for a region before the first render)
//   - Type: an operation needs numeric data but received categorical data
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateName, "block %q already exists on %s", name, side)
//	if errors.IsValidation(err) {
//	    // reject the input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSide   Code = "INVALID_SIDE"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeDuplicateName Code = "DUPLICATE_NAME"
	ErrCodeSizeMismatch  Code = "SIZE_MISMATCH"
	ErrCodeInvalidOrder  Code = "INVALID_ORDER"
	ErrCodeInvalidOption Code = "INVALID_OPTION"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidSpec   Code = "INVALID_SPEC"

	// State errors
	ErrCodeNotRendered Code = "NOT_RENDERED"

	// Type errors
	ErrCodeInvalidType Code = "INVALID_TYPE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeDatasetNotFound Code = "DATASET_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category groups codes by the kind of failure they describe.
type Category int

const (
	CategoryOther Category = iota
	CategoryValidation
	CategoryState
	CategoryType
)

var categories = map[Code]Category{
	ErrCodeInvalidInput:  CategoryValidation,
	ErrCodeInvalidSide:   CategoryValidation,
	ErrCodeInvalidName:   CategoryValidation,
	ErrCodeDuplicateName: CategoryValidation,
	ErrCodeSizeMismatch:  CategoryValidation,
	ErrCodeInvalidOrder:  CategoryValidation,
	ErrCodeInvalidOption: CategoryValidation,
	ErrCodeInvalidFormat: CategoryValidation,
	ErrCodeInvalidPath:   CategoryValidation,
	ErrCodeInvalidSpec:   CategoryValidation,
	ErrCodeNotRendered:   CategoryState,
	ErrCodeInvalidType:   CategoryType,
}

// Category reports which category the code belongs to.
func (c Code) Category() Category {
	return categories[c]
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

// Annotate wraps err with context and keeps its code. Errors without a code
// become internal errors.
func Annotate(err error, format string, args ...any) *Error {
	code := GetCode(err)
	if code == "" {
		code = ErrCodeInternal
	}
	return Wrap(code, err, format, args...)
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

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return GetCode(err).Category() == CategoryValidation
}

// IsState reports whether err is a state error.
func IsState(err error) bool {
	return GetCode(err).Category() == CategoryState
}

// IsType reports whether err is a type error.
func IsType(err error) bool {
	return GetCode(err).Category() == CategoryType
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
