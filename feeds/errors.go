package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError with errors.Is
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches every *NotFoundError with errors.Is
	ErrNotFound = errors.New("not found")
)

// ValidationError is returned when a mutation is given invalid input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError is returned when an operation references an unknown id
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
