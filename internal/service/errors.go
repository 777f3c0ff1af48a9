package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced solicitud or configuration row
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoAutorizado is returned when the acting user is not the resolved
// approver for the active level.
var ErrNoAutorizado = errors.New("user is not the designated approver for this level")

// ValidationError is a malformed-input error, rejected before any store
// mutation. Recoverable by the caller correcting the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func invalidInput(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
