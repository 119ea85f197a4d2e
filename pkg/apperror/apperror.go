// Package apperror provides coded domain errors shared by services and handlers.
//
// Services return typed errors:
//
//	return apperror.NotFound("book not found")
//
// Handlers check them with errors.Is against the sentinels, or hand them to
// response.FromError which maps the code to an HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status for the code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a message and optional details.
// Validation errors carry a map[field]message in Details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// Validation creates a validation error with per-field details.
func Validation(msg string, fields map[string]string) *Error {
	e := &Error{Code: CodeValidation, Message: msg}
	if len(fields) > 0 {
		e.Details = fields
	}
	return e
}

// Field is shorthand for a validation error on a single field.
func Field(field, problem string) *Error {
	return Validation("invalid "+field, map[string]string{field: problem})
}

func NotFound(msg string) *Error     { return &Error{Code: CodeNotFound, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Code: CodeConflict, Message: msg} }

// Internal wraps an unexpected failure; the cause is kept for logs only.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
