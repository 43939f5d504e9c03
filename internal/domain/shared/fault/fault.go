package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that translate engine failures into
// transport statuses.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindInternal            Kind = "INTERNAL"
)

// Error is a classified error. Package sentinels are *Error values so that
// errors.Is keeps working through fmt.Errorf wrapping.
type Error struct {
	Kind    Kind
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

// New creates a classified sentinel.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind to an arbitrary cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is a shortcut for request-shape problems detected outside of a
// package sentinel.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the first kind found in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ErrConcurrentUpdate reports an optimistic-concurrency collision at write
// time. Units of work that see it are safe to re-run from scratch.
var ErrConcurrentUpdate = New(KindInternal, "storage: concurrent update detected")
