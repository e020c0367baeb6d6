// Package apperr defines the error type handlers return when a request
// must end with a specific HTTP status.
//
// An *Error carries the status, a client-safe message, and optionally the
// underlying cause. jsonapi.WriteError is the only place these are turned
// into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an operational error with an HTTP status.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with the given status and message.
func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Wrap returns an Error with the given status and message that wraps err.
func Wrap(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, msg) }

// Internal wraps an unexpected failure. The message is logged, never sent.
func Internal(msg string, err error) *Error {
	return Wrap(http.StatusInternalServerError, msg, err)
}

// As reports whether err (or anything it wraps) is an *Error and returns it.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// IsClient reports whether status is a 4xx status.
func IsClient(status int) bool {
	return status >= 400 && status < 500
}
