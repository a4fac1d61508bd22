// Package apperr carries typed error kinds across the service boundary.
// Services return these; the transport layer maps kind to HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation  Kind = "VALIDATION"
	NotFound    Kind = "NOT_FOUND"
	Conflict    Kind = "CONFLICT"
	Unavailable Kind = "UNAVAILABLE"
	Internal    Kind = "INTERNAL"
)

type Error struct {
	K   Kind
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(k Kind, msg string) error { return &Error{K: k, Msg: msg} }

func Wrap(k Kind, msg string, err error) error { return &Error{K: k, Msg: msg, Err: err} }

// KindOf extracts the kind, Internal for plain errors, "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.K
	}
	return Internal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool { return KindOf(err) == k }
