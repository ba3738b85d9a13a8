package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindOutOfScope           ErrorKind = "OUT_OF_SCOPE"
	KindValidation           ErrorKind = "VALIDATION"
	KindUnauthenticated      ErrorKind = "UNAUTHENTICATED"
	KindForbidden            ErrorKind = "FORBIDDEN"
	KindConflict             ErrorKind = "CONFLICT"
	KindEmptyCart            ErrorKind = "EMPTY_CART"
	KindCartAlreadyConverted ErrorKind = "CART_ALREADY_CONVERTED"
	KindNoShippingRate       ErrorKind = "NO_SHIPPING_RATE"
	KindInternal             ErrorKind = "INTERNAL"
)

// Error is a domain failure that the API boundary knows how to present.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "not found"}
	ErrOutOfScope           = &Error{Kind: KindOutOfScope, Message: "resource does not belong to this tenant"}
	ErrValidation           = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrForbidden            = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict             = &Error{Kind: KindConflict, Message: "conflict"}
	ErrEmptyCart            = &Error{Kind: KindEmptyCart, Message: "cart is empty"}
	ErrCartAlreadyConverted = &Error{Kind: KindCartAlreadyConverted, Message: "cart has already been converted to an order"}
	ErrNoShippingRate       = &Error{Kind: KindNoShippingRate, Message: "no shipping rate available"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func OutOfScope(format string, args ...any) *Error {
	return newError(KindOutOfScope, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func Unauthenticated(format string, args ...any) *Error {
	return newError(KindUnauthenticated, format, args...)
}

func NoShippingRate(format string, args ...any) *Error {
	return newError(KindNoShippingRate, format, args...)
}

// KindOf reports the domain kind of err, or KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage hides internal failures from API callers.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound, KindOutOfScope:
		return http.StatusNotFound
	case KindValidation, KindEmptyCart, KindNoShippingRate:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindCartAlreadyConverted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
