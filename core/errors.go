package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a looked up record does not exist.
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{message: msg}
}

func (err NotFoundError) Error() string {
	return err.message
}

// ConflictError is returned when a write would break a referential constraint.
type ConflictError struct {
	message string
}

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{message: msg}
}

func (err ConflictError) Error() string {
	return err.message
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// UniqueViolationError is returned by repositories when a write would duplicate a unique value.
type UniqueViolationError struct {
	Constraint string
	Field      string
}

func NewUniqueViolationError(constraint, field string) *UniqueViolationError {
	return &UniqueViolationError{Constraint: constraint, Field: field}
}

func (err UniqueViolationError) Error() string {
	return "duplicate value violates unique constraint " + err.Constraint
}

// IsUniqueViolation reports whether the cause of err is a *UniqueViolationError.
func IsUniqueViolation(err error) bool {
	_, ok := errors.Cause(err).(*UniqueViolationError)
	return ok
}

// ForbiddenError is returned when the caller may not act on an existing record.
type ForbiddenError struct {
	message string
}

func NewForbiddenError(msg string) *ForbiddenError {
	return &ForbiddenError{message: msg}
}

func (err ForbiddenError) Error() string {
	return err.message
}
