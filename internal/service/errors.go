package service

import (
	"fmt"

	"github.com/ad-tracker/video-engagement-sim/internal/db"
	"github.com/ad-tracker/video-engagement-sim/internal/validation"
)

// ValidationError represents invalid caller input.
type ValidationError struct {
	Message string
	Fields  []validation.FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Unwrap lets errors.Is match db.ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return db.ErrNotFound
}

// ConflictError is returned when a write collides with an existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ProcessingError represents an unexpected failure while handling a request.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// invalid converts a validator failure into a ValidationError.
func invalid(err error) error {
	if verr, ok := err.(*validation.Error); ok {
		return &ValidationError{Message: verr.Error(), Fields: verr.Fields}
	}
	return &ValidationError{Message: err.Error()}
}

// storeError maps repository errors onto the service error types.
func storeError(err error, resource string, id int64, action string) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return &NotFoundError{Resource: resource, ID: id}
	case db.IsDuplicateKey(err):
		return &ConflictError{Message: fmt.Sprintf("%s already exists", resource)}
	case db.IsForeignKeyViolation(err):
		return &ValidationError{Message: fmt.Sprintf("%s references a missing record", resource)}
	case db.IsCheckViolation(err):
		return &ValidationError{Message: fmt.Sprintf("%s violates constraint %s", resource, db.ViolatedConstraint(err))}
	}
	return &ProcessingError{Message: "failed to " + action, Cause: err}
}
