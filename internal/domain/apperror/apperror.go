// Package apperror defines the error taxonomy shared by services and
// HTTP handlers. Services return these errors; handlers map them to
// status codes without inspecting message strings.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation      Kind = iota // malformed input
	KindInvalidField                // role attempted a disallowed field mutation
	KindUnauthenticated             // missing/invalid credential
	KindTokenExpired
	KindTokenRevoked
	KindForbidden // role/ownership denial
	KindNotFound
	KindConflict // duplicate identifier
	KindInternal
)

// Error carries a kind, a user-facing message and optional field details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidField:
		return http.StatusBadRequest
	case KindUnauthenticated, KindTokenExpired, KindTokenRevoked:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Validation(msg string) *Error      { return New(KindValidation, msg) }
func InvalidField(msg string) *Error    { return New(KindInvalidField, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }

func WithDetails(e *Error, details map[string]string) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details}
}

// Common sentinel instances. Compare with Is rather than ==; services may
// wrap them with more context.
var (
	ErrInvalidCredentials = New(KindUnauthenticated, "invalid username or password")
	ErrInvalidToken       = New(KindUnauthenticated, "invalid token")
	ErrTokenExpired       = New(KindTokenExpired, "token expired")
	ErrTokenRevoked       = New(KindTokenRevoked, "token revoked")
	ErrUserNotFound       = New(KindNotFound, "user not found")
	ErrTaskNotFound       = New(KindNotFound, "task not found")
	ErrDuplicateUser      = New(KindConflict, "username or email already exists")
)

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// From extracts the *Error from err, or wraps err as an internal error.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Message: "internal server error"}
}
