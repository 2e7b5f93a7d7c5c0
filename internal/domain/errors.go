package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by every layer. Handlers translate them into distinct status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports malformed or missing input detected before anything is persisted.
// errors.Is(err, ErrInvalidInput) holds for every ValidationError.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a ValidationError, or nil when problems is empty.
func NewValidationError(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
