package seq

import (
	"errors"
	"fmt"
)

// Field names reported by ValidationError.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldTermA       = "term_a"
	FieldTermB       = "term_b"
	FieldTermAAlt    = "term_a_alt"
	FieldTermBAlt    = "term_b_alt"
	FieldOperator    = "operator"
	FieldSide        = "side"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or malformed input field.
//
// Validation errors are always correctable by the caller; Field names the
// offending input so a front end can point at it.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationField returns the field named by a wrapped ValidationError, or "".
func ValidationField(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "must not be empty"}
}
