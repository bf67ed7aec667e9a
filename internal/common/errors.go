package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error for HTTP mapping and
// persistence policy decisions.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"       // 400
	KindNotFound        ErrorKind = "NOT_FOUND"        // 400, bad command name is a caller error
	KindInvalidSpec     ErrorKind = "INVALID_SPEC"     // 400
	KindUnsupportedType ErrorKind = "UNSUPPORTED_TYPE" // 400
	KindService         ErrorKind = "SERVICE"          // 500, upstream call failed
	KindPersistence     ErrorKind = "PERSISTENCE"      // 500, store write failed
	KindInternal        ErrorKind = "INTERNAL"         // 500
)

// Error is the single application error type.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindNotFound, KindInvalidSpec, KindUnsupportedType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidSpecError(message string, cause error) *Error {
	return &Error{Kind: KindInvalidSpec, Message: message, Cause: cause}
}

func UnsupportedTypeError(message string) *Error {
	return &Error{Kind: KindUnsupportedType, Message: message}
}

func ServiceError(message string, cause error) *Error {
	return &Error{Kind: KindService, Message: message, Cause: cause}
}

func PersistenceError(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

func InternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HTTPStatus returns the response status for err, 500 for untyped errors.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Message returns the human-readable text for err with the cause chain
// appended but without the kind prefix, suitable for API responses and
// history records.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
