// apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error and decides the HTTP status it is rendered with.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the application error carried from repositories and services up
// to the HTTP error handler.
type Error struct {
	Kind    Kind                   `json:"-"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value rendered next to the message.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func Unauthenticated(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(KindUnauthenticated, message, nil)
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return New(KindForbidden, message, nil)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found", nil)
}

func Conflict(message string) *Error {
	return New(KindConflict, message, nil)
}

func TooManyRequests(message string) *Error {
	return New(KindTooManyRequests, message, nil)
}

// Internal wraps an unexpected failure. The message never reaches clients.
func Internal(err error) *Error {
	return New(KindInternal, "Internal server error", err)
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// As extracts the application error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
