// Package apperr defines the error kinds surfaced at the HTTP boundary.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the stable machine-readable error identifier returned to clients.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

// Error is an application error carrying a Kind and a user-facing message.
type Error struct {
	kind    Kind
	message string
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Message() string {
	return e.message
}

// HTTPCode maps the kind onto a response status.
func (e *Error) HTTPCode() int {
	return e.kind.HTTPCode()
}

func (k Kind) HTTPCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

// NotFound is also used for ownership mismatches so callers cannot probe
// for records they do not own.
func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
