package partition

import (
	"errors"
	"fmt"
)

// ErrMissingField matches every *MissingFieldError via errors.Is.
var ErrMissingField = errors.New("partition: missing required field")

// MissingFieldError reports a command that lacks a field its variant
// requires. It is raised before any SQL is produced.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("partition: %s requires %s", e.Kind, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func missing(k Kind, field string) error {
	return &MissingFieldError{Kind: k, Field: field}
}
