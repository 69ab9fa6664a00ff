// ================== pkg/errors/errors.go =================
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindState
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "resource not found"}
	ErrUnauthorized = &Error{Kind: KindAuthentication, Code: "AUTH_FAILED", Message: "unauthorized"}
	ErrForbidden    = &Error{Kind: KindAuthorization, Code: "FORBIDDEN", Message: "forbidden"}
	ErrBadRequest   = &Error{Kind: KindValidation, Code: "BAD_REQUEST", Message: "bad request"}
	ErrConflict     = &Error{Kind: KindState, Code: "INVALID_STATE", Message: "invalid state transition"}
	ErrInternal     = &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "internal server error"}
)

// Error is the application error carried from services to handlers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
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

// Is matches another *Error of the same kind and code, so the sentinels above
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Authentication reports a missing or invalid identity.
func Authentication(code, message string) *Error {
	return newError(KindAuthentication, code, message, nil)
}

// Authorization reports an authenticated caller acting beyond its role.
func Authorization(code, message string) *Error {
	return newError(KindAuthorization, code, message, nil)
}

// Validation reports malformed input.
func Validation(code, message string) *Error {
	return newError(KindValidation, code, message, nil)
}

// NotFound reports an absent target record.
func NotFound(code, message string) *Error {
	return newError(KindNotFound, code, message, nil)
}

// State reports an illegal transition, e.g. resolving a terminal report.
func State(code, message string) *Error {
	return newError(KindState, code, message, nil)
}

// External wraps a store or third-party failure.
func External(code, message string, err error) *Error {
	return newError(KindExternal, code, message, err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// As is a shorthand for errors.As into *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
