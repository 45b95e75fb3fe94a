package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so the HTTP layer can pick a status
// code without inspecting message text.
type Kind int

const (
	// Unknown is any failure not produced by this package (DB errors etc.)
	Unknown Kind = iota
	// NotFound means a referenced entity does not exist
	NotFound
	// PermissionDenied means the actor lacks the required authorship
	PermissionDenied
	// Validation means the input is malformed or violates a business rule
	Validation
	// Conflict means an edge or unique value already exists / is absent on remove
	Conflict
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a classified error
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a NotFound error
func NotFoundf(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}

// PermissionDeniedf creates a PermissionDenied error
func PermissionDeniedf(format string, args ...interface{}) *Error {
	return New(PermissionDenied, format, args...)
}

// Validationf creates a Validation error
func Validationf(format string, args ...interface{}) *Error {
	return New(Validation, format, args...)
}

// Conflictf creates a Conflict error
func Conflictf(format string, args ...interface{}) *Error {
	return New(Conflict, format, args...)
}

// KindOf returns the classification of err, or Unknown for plain errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
