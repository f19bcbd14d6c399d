package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so the web layer can pick a status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUnauthenticated
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is a classified service error. Msg is safe to show to clients; Err
// holds the underlying cause and is only logged.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Msg: "invalid input"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Msg: "authentication required"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Msg: "invalid user_name or password"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrConflict           = &Error{Kind: KindConflict, Msg: "conflict"}
)

func invalidInput(format string, a ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, a...)}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func notFound(resource string) error {
	return &Error{Kind: KindNotFound, Msg: resource + " not found"}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Msg: op, Err: err}
}

// KindOf returns the kind of a service error; unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
