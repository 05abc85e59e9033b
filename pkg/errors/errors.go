// Package errors provides structured error types shared by the CLI and the
// HTTP API.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Mapping of domain sentinel errors to HTTP statuses
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Missing library entries or files
//   - NETWORK_ERROR, TIMEOUT: Backend and deadline failures
//   - INTERNAL_ERROR: Unexpected internal errors
//
// An Undetermined commutativity result is not an error and has no code.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMode, "unknown layout mode %q", mode)
//	if errors.Is(err, errors.ErrCodeInvalidMode) {
//	    // Handle validation error
//	}
//
//	// Attach a code to a domain error
//	err := errors.Classify(layoutErr)
//	status := errors.HTTPStatus(err.Code)
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/catdiagram/pkg/cache"
	"github.com/matzehuels/catdiagram/pkg/category"
	"github.com/matzehuels/catdiagram/pkg/io"
	"github.com/matzehuels/catdiagram/pkg/layout"
	"github.com/matzehuels/catdiagram/pkg/library"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidDiagram Code = "INVALID_DIAGRAM"
	ErrCodeInvalidGroups  Code = "INVALID_GROUPS"
	ErrCodeInvalidMode    Code = "INVALID_MODE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Classify returns err as an *Error. Errors that already carry a code are
// returned unchanged; known sentinel errors of the domain packages get
// their code; anything else is INTERNAL_ERROR. Classify(nil) is nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var layoutErr *layout.LayoutError
	switch {
	case errors.As(err, &layoutErr):
		return Wrap(ErrCodeInvalidGroups, err, "invalid layout groups")
	case errors.Is(err, layout.ErrInvalidMode):
		return Wrap(ErrCodeInvalidMode, err, "invalid layout mode")
	case errors.Is(err, io.ErrUnknownFormat):
		return Wrap(ErrCodeInvalidFormat, err, "invalid format")
	case errors.Is(err, category.ErrBrokenChain),
		errors.Is(err, category.ErrEmptyName),
		errors.Is(err, category.ErrIdentityTags),
		errors.Is(err, category.ErrUnknownObject),
		errors.Is(err, category.ErrEmptyComposite),
		errors.Is(err, category.ErrZeroMorphism),
		errors.Is(err, io.ErrUnknownArrow),
		errors.Is(err, io.ErrInvalidArrow),
		errors.Is(err, io.ErrDuplicateArrow),
		errors.Is(err, io.ErrNoDiagram):
		return Wrap(ErrCodeInvalidDiagram, err, "invalid diagram")
	case errors.Is(err, library.ErrInvalidName):
		return Wrap(ErrCodeInvalidInput, err, "invalid input")
	case errors.Is(err, library.ErrNotFound):
		return Wrap(ErrCodeNotFound, err, "not found")
	case errors.Is(err, cache.ErrNetwork):
		return Wrap(ErrCodeNetwork, err, "backend unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, "deadline exceeded")
	default:
		return Wrap(ErrCodeInternal, err, "internal error")
	}
}

// HTTPStatus maps a code to the HTTP status the API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidDiagram, ErrCodeInvalidGroups,
		ErrCodeInvalidMode, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
