package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies a pipeline failure class. Transport status codes are
// derived from the kind, never from message content.
type ErrorKind string

const (
	ErrUnsupportedFormat    ErrorKind = "unsupported_format"
	ErrParse                ErrorKind = "parse_error"
	ErrConstraintViolation  ErrorKind = "constraint_violation"
	ErrDuplicateImport      ErrorKind = "duplicate_import"
	ErrScopeMismatch        ErrorKind = "scope_mismatch"
	ErrAccessDenied         ErrorKind = "access_denied"
	ErrCrossTenantReference ErrorKind = "cross_tenant_reference"
	ErrInternal             ErrorKind = "internal"
)

// Error is a terminal pipeline error. Field and batch errors are not Errors;
// they are collected into ValidationOutcome and ImportSummary instead.
type Error struct {
	Kind    ErrorKind
	Message string
	// Prior is set for duplicate-import errors so the actor can be pointed
	// at the earlier import.
	Prior *PriorImport
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets callers match on kind with errors.Is(err, &Error{Kind: ...}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a terminal error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a terminal error of the given kind.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// DuplicateError builds a DuplicateImport error referencing the prior import.
func DuplicateError(prior PriorImport) *Error {
	return &Error{
		Kind:    ErrDuplicateImport,
		Message: fmt.Sprintf("file already imported as %s", prior.ID),
		Prior:   &prior,
	}
}

// KindOf extracts the error kind, defaulting to ErrInternal for errors that
// did not originate in the pipeline.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInternal
}

// HTTPStatus maps an error kind to a transport status code.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case ErrUnsupportedFormat, ErrParse:
		return http.StatusBadRequest
	case ErrConstraintViolation:
		return http.StatusRequestEntityTooLarge
	case ErrDuplicateImport:
		return http.StatusConflict
	case ErrScopeMismatch, ErrAccessDenied, ErrCrossTenantReference:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
