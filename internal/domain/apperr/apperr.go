// Package apperr defines the error taxonomy shared by all domain services.
// Errors are created at the point of detection and propagate unmodified to
// the HTTP boundary, where HTTPStatus maps each kind to a response code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindValidation marks malformed or missing required input.
	KindValidation Kind = iota
	// KindNotFound marks a reference to an entity that does not exist.
	KindNotFound
	// KindAccessDenied marks a tenant mismatch between caller and entity.
	KindAccessDenied
	// KindInvariantViolation marks a business-rule breach, such as a second
	// active admission for the same patient.
	KindInvariantViolation
	// KindInvalidState marks an operation that is not legal in the entity's
	// current lifecycle state.
	KindInvalidState
)

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// AccessDeniedf builds an access-denied error. The message must never leak
// data belonging to another tenant.
func AccessDeniedf(format string, args ...interface{}) *Error {
	return newf(KindAccessDenied, format, args...)
}

// InvariantViolationf builds a business-rule error.
func InvariantViolationf(format string, args ...interface{}) *Error {
	return newf(KindInvariantViolation, format, args...)
}

// InvalidStatef builds an invalid-lifecycle-state error.
func InvalidStatef(format string, args ...interface{}) *Error {
	return newf(KindInvalidState, format, args...)
}

// Wrap attaches a cause to a classified error message.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return is(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsAccessDenied reports whether err is an access-denied error.
func IsAccessDenied(err error) bool { return is(err, KindAccessDenied) }

// IsInvariantViolation reports whether err is a business-rule error.
func IsInvariantViolation(err error) bool { return is(err, KindInvariantViolation) }

// IsInvalidState reports whether err is an invalid-state error.
func IsInvalidState(err error) bool { return is(err, KindInvalidState) }

// HTTPStatus maps an error to the status code the REST surface returns for
// it. Unclassified errors map to 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInvariantViolation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
