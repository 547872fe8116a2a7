// Package apperror defines the error taxonomy shared by services, the
// authorization gate and the HTTP layer.
package apperror

import "errors"

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindDuplicateSubmission Kind = "duplicate_submission"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field   string
	Message string
}

// Error carries a machine-readable kind next to the human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation reports malformed or missing input.
func Validation(message string, fields ...FieldError) *Error {
	err := newError(KindValidation, message)
	err.Fields = fields
	return err
}

// NotFound reports that a referenced record does not exist.
func NotFound(message string) *Error {
	return newError(KindNotFound, message)
}

// Unauthorized reports a failed ownership check.
func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, message)
}

// Forbidden reports a failed role or membership check.
func Forbidden(message string) *Error {
	return newError(KindForbidden, message)
}

// Duplicate reports a second submission for the same assignment and student.
func Duplicate(message string) *Error {
	return newError(KindDuplicateSubmission, message)
}

// Conflict reports a uniqueness violation other than submissions (e.g. email).
func Conflict(message string) *Error {
	return newError(KindConflict, message)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err belongs to the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
