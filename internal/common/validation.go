package common

import (
	"fmt"
	"strings"
)

// MaxReportedProblems caps how many problems an itemized report prints.
const MaxReportedProblems = 20

// ValidationError represents one validation failure inside a collection
type ValidationError struct {
	Index   int
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("#%d: %s", e.Index, e.Message)
	}
	if e.Value == nil {
		return fmt.Sprintf("#%d: %s %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("#%d: %s %s (%v)", e.Index, e.Field, e.Message, e.Value)
}

// Validator collects problems for a collection of records
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field of the record at index and collects errors
func (v *Validator) Field(index int, fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			err.Index = index
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// Add records a problem that is not tied to a single rule
func (v *Validator) Add(index int, fieldName string, value interface{}, message string) *Validator {
	v.errors = append(v.errors, ValidationError{Index: index, Field: fieldName, Value: value, Message: message})
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Itemize renders problems one per line, truncating after limit.
func Itemize(problems []string, limit int) string {
	var b strings.Builder
	for i, p := range problems {
		if i == limit {
			fmt.Fprintf(&b, "\n... (%d more)", len(problems)-limit)
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(p)
	}
	return b.String()
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	}
	return nil
}

// NonNegative rejects negative numbers.
func NonNegative(fieldName string, value interface{}) *ValidationError {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return &ValidationError{Field: fieldName, Value: v, Message: "must not be negative"}
		}
	case int64:
		if v < 0 {
			return &ValidationError{Field: fieldName, Value: v, Message: "must not be negative"}
		}
	}
	return nil
}

// Percentage requires an int within 0..100.
func Percentage(fieldName string, value interface{}) *ValidationError {
	v, ok := value.(int)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be an integer"}
	}
	if v < 0 || v > 100 {
		return &ValidationError{Field: fieldName, Value: v, Message: "must be within 0..100"}
	}
	return nil
}
