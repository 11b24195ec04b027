// Package apperror defines the error taxonomy callers across the hotel core
// use to distinguish failure classes without string-matching error text.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindInvalid             Kind = "INVALID"
	KindRateLimited         Kind = "RATE_LIMITED"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInternal            Kind = "INTERNAL"
)

// Error wraps an underlying cause with a Kind so callers can branch on
// errors.As instead of inspecting message text.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error    { return New(KindNotFound, message) }
func Conflict(message string) *Error    { return New(KindConflict, message) }
func Invalid(message string) *Error     { return New(KindInvalid, message) }
func RateLimited(message string) *Error { return New(KindRateLimited, message) }

func ProviderUnavailable(message string, cause error) *Error {
	return Wrap(KindProviderUnavailable, message, cause)
}

// KindOf returns the Kind of err if it (or something it wraps) is an *Error,
// KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
