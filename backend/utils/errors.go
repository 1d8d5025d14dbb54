package utils

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind is the machine-readable category of an AppError.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// AppError carries a stable kind, a user-facing message and, for validation
// errors, the offending fields.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Kind != KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any *AppError of the same kind.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrInternal     = &AppError{Kind: KindInternal}
)

// Validation reports missing or malformed request fields.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// FieldError is Validation for a single field.
func FieldError(field, problem string) *AppError {
	return Validation("Invalid request", map[string]string{field: problem})
}

func NotFoundErr(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func ForbiddenErr(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func UnauthorizedErr(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

// Internal hides the cause from the client; the cause is kept for logging.
func Internal(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of err, treating unknown errors as internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// DBError maps a gorm error to an AppError. Missing rows become not_found
// for the named resource, anything else is internal.
func DBError(resource string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundErr(resource)
	}
	return Internal("Could not query database", err)
}
