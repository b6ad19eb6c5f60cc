// Package apperr defines the error taxonomy shared by all handlers: every
// failure a client can cause maps to exactly one of not-found, validation,
// conflict, or integrity, each carrying its HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the error class on the wire.
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeValidation Code = "validation"
	CodeConflict   Code = "conflict"
	CodeIntegrity  Code = "integrity"
)

// Error is a client-caused failure with a fixed HTTP status.
type Error struct {
	Status  int
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or out-of-range input, detected before any
// store access.
func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a violated uniqueness or exclusivity invariant.
func Conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Integrity reports a store-level constraint violation not otherwise
// distinguished.
func Integrity(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeIntegrity, Message: fmt.Sprintf(format, args...)}
}

// StatusOf returns the HTTP status for err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
