// Package apperr is the error taxonomy shared by services, middleware and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Each kind maps to exactly one HTTP status.
type Kind int

const (
	Internal Kind = iota
	BadInput
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	TooManyRequests
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "bad_input"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case TooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error is a classified failure with a client-facing message and optional payload.
type Error struct {
	Kind    Kind
	Message string
	Data    any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithData attaches a payload rendered in the envelope's data field.
func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

func BadRequest(msg string) *Error      { return New(BadInput, msg) }
func Unauthorized(msg string) *Error    { return New(Unauthenticated, msg) }
func Denied(msg string) *Error          { return New(Forbidden, msg) }
func Missing(msg string) *Error         { return New(NotFound, msg) }
func Duplicate(msg string) *Error       { return New(Conflict, msg) }
func Throttled(msg string) *Error       { return New(TooManyRequests, msg) }
func Wrap(err error, msg string) *Error { return &Error{Kind: Internal, Message: msg, Err: err} }

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// As extracts the classified error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
