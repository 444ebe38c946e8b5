// Package apperr defines the error kinds the API exposes to clients and the
// HTTP status each one maps to.
//
// Services return *Error values (or wrap one); controllers hand any error to
// response.Fail, which picks the status from the kind and hides the cause of
// Internal errors from the client.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the client.
type Kind string

const (
	Internal           Kind = "internal"
	Unauthenticated    Kind = "unauthenticated"
	Forbidden          Kind = "forbidden"
	NotFound           Kind = "not_found"
	Conflict           Kind = "conflict"
	DuplicateEmail     Kind = "duplicate_email"
	InvalidInput       Kind = "invalid_input"
	InvalidCredentials Kind = "invalid_credentials"
	EmptyCart          Kind = "empty_cart"
	Timeout            Kind = "timeout"
	Unavailable        Kind = "unavailable"
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case DuplicateEmail, InvalidInput, InvalidCredentials, EmptyCart:
		return http.StatusBadRequest
	case Timeout:
		return http.StatusGatewayTimeout
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrEmptyCart) works
// for freshly constructed errors too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an error of kind with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches cause to a new error of kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Sentinels for errors.Is checks across packages.
var (
	ErrCartNotFound       = New(NotFound, "Cart not found")
	ErrItemNotFound       = New(NotFound, "Item not found in cart")
	ErrProductNotFound    = New(NotFound, "Product not found")
	ErrCategoryNotFound   = New(NotFound, "Category not found")
	ErrOrderNotFound      = New(NotFound, "Order not found")
	ErrUserNotFound       = New(NotFound, "User not found")
	ErrEmptyCart          = New(EmptyCart, "Cart is empty")
	ErrDuplicateEmail     = New(DuplicateEmail, "User already exists")
	ErrInvalidCredentials = New(InvalidCredentials, "Invalid credentials")
)

// KindOf reports the kind of err. Context deadlines map to Timeout and
// unclassified errors to Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	if errors.Is(err, context.Canceled) {
		return Unavailable
	}
	return Internal
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != Internal {
		return ae.Message
	}
	switch KindOf(err) {
	case Timeout:
		return "Request timed out"
	case Unavailable:
		return "Service unavailable"
	}
	return "Server error"
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
