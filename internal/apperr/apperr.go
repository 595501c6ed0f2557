// Package apperr defines the error kinds shared by the service layer,
// the HTTP handlers and the admin client.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the stable, wire-visible classification of an error.
type Kind string

const (
	// KindUnauthorized is returned when the gate rejects a claimed secret.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound is returned when an id or slug does not resolve.
	KindNotFound Kind = "NOT_FOUND"
	// KindValidation is returned when a payload fails shape constraints.
	KindValidation Kind = "BAD_REQUEST"
	// KindConflict is returned when a unique field is already taken.
	KindConflict Kind = "CONFLICT"
	// KindInternal covers collaborator failures. Its message is always opaque.
	KindInternal Kind = "INTERNAL_SERVER_ERROR"
)

// Error is a classified error. Message is safe to show to untrusted
// callers; Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized builds a gate rejection.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NotFound builds a lookup miss.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation builds a shape-constraint failure.
func Validation(msg string, err error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

// Conflict builds a uniqueness failure.
func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// Internal wraps a collaborator failure behind a generic message.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the inverse of HTTPStatus, used by the client when a
// response body carries no recognizable error code.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}
