package model

import (
	"errors"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("operation not permitted")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("conflict: precondition no longer holds")
)

// FieldError points at a specific bad input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation error"
	}

	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
