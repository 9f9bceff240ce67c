package domain

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in a payload.
type ValidationError struct {
	Details []FieldError
}

// NewValidationError returns nil when there is nothing to report.
func NewValidationError(details []FieldError) error {
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = fmt.Sprintf("%s %s", d.Field, d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
