// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
	KindPaymentFailed
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindPaymentFailed:
		return "payment_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a classified error carrying the failing operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a user-correctable request problem.
func Validation(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// NotFound reports a missing record.
func NotFound(op, what, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s not found: %s", what, id)}
}

// Conflict reports a uniqueness or state conflict.
func Conflict(op, message string) error {
	return &Error{Kind: KindConflict, Op: op, Message: message}
}

// Upstream reports a failure of an external collaborator.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Message: "upstream service failed", Err: err}
}

// PaymentFailed reports a payment that did not complete.
func PaymentFailed(op, message string) error {
	return &Error{Kind: KindPaymentFailed, Op: op, Message: message}
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(op, message string) error {
	return &Error{Kind: KindUnauthorized, Op: op, Message: message}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(op, message string) error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

// Internal wraps an unexpected store or runtime failure.
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
