// Package apperror defines the error kinds surfaced by the marketplace
// services. Every failure returned from a service carries exactly one kind so
// the API layer can map it to a distinct status code.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindInternal     Kind = "internal"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindTransient    Kind = "transient"
	KindUnauthorized Kind = "unauthorized"
)

// FieldErrors collects validation messages per input field.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error is a categorised service error.
type Error struct {
	Kind    Kind
	Message string
	Fields  FieldErrors
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

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func InvalidState(msg string) *Error { return New(KindInvalidState, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }

// Validation reports malformed input. fields may be nil.
func Validation(msg string, fields FieldErrors) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Transient wraps a store or channel failure that is safe to retry.
func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Unavailable classifies an unexpected persistence failure. Errors that
// already carry a kind are returned unchanged.
func Unavailable(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Transient(op+" failed", err)
}
