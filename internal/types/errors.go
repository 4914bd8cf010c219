package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPlaceholder reports a value that still carries a template placeholder
// (for example "TODO" or a loopback URL) in a production descriptor.
var ErrPlaceholder = errors.New("placeholder value")

// FieldError represents an error that occurred while processing a specific field.
type FieldError struct {
	Path    string // e.g., "auth.clientId"
	Tag     string // e.g., "env", "required", "absurl"
	Value   string // the invalid value
	Message string
	Err     error
}

// Error returns the string representation of the FieldError.
func (e *FieldError) Error() string {
	var sb strings.Builder
	sb.WriteString("field '")
	sb.WriteString(e.Path)
	sb.WriteString("'")

	if e.Tag != "" {
		sb.WriteString(" (tag '")
		sb.WriteString(e.Tag)
		sb.WriteString("')")
	}

	if e.Value != "" {
		sb.WriteString(": invalid value '")
		sb.WriteString(e.Value)
		sb.WriteString("'")
	}

	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// LoadError represents an error that occurred while reading a descriptor source.
type LoadError struct {
	Source string // file path or source name
	Err    error
}

// Error returns the string representation of the LoadError.
func (e *LoadError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to load environment descriptor")
	if e.Source != "" {
		sb.WriteString(" from ")
		sb.WriteString(e.Source)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Errors []error
}

// Error returns the string representation of the ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %v", e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		if i < len(e.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Unwrap returns all collected errors so errors.Is and errors.As see every field.
func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// Fields returns the collected errors that are FieldErrors.
func (e *ValidationError) Fields() []*FieldError {
	fields := make([]*FieldError, 0, len(e.Errors))
	for _, err := range e.Errors {
		var fe *FieldError
		if errors.As(err, &fe) {
			fields = append(fields, fe)
		}
	}

	return fields
}
