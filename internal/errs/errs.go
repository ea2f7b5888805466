// Package errs defines the error taxonomy shared by every layer.
// Each error carries a Kind so that handlers and the console can turn it
// into a user-facing message without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUpload
	KindPersistence
	KindAuth
	KindConfig
	KindNotFound
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpload:
		return "upload"
	case KindPersistence:
		return "persistence"
	case KindAuth:
		return "auth"
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Field names the form field or document slot at fault, if any.
	Field string
	// Suggestion tells the operator how to fix a configuration problem.
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports a local input problem on field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

// Upload reports a failed transfer of the file stored in slot label.
func Upload(label string, cause error) *Error {
	return &Error{
		Kind:    KindUpload,
		Field:   label,
		Message: fmt.Sprintf("failed to upload %q", label),
		Cause:   cause,
	}
}

// Persistence wraps a data-store failure during op.
func Persistence(op string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: op + " failed", Cause: cause}
}

// Auth is the generic authentication failure.
func Auth() *Error {
	return &Error{Kind: KindAuth, Message: "invalid credentials"}
}

// Config reports a missing or invalid setting.
func Config(msg, suggestion string) *Error {
	return &Error{Kind: KindConfig, Message: msg, Suggestion: suggestion}
}

// NotFound reports a missing record.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Forbidden reports an action the caller's role may not perform.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FieldOf returns the offending field of err, if it carries one.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// Message returns the user-facing text of err without the wrapped cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Suggestion != "" {
			return fmt.Sprintf("%s (%s)", e.Message, e.Suggestion)
		}
		return e.Message
	}
	return "unexpected error"
}
