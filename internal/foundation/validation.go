// Package foundation holds small generic building blocks shared by the
// configuration packages.
package foundation

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/buildplan/internal/foundation/errors"
)

// Validator represents a validation function.
type Validator[T any] func(T) ValidationResult

// ValidationResult contains the result of a validation operation.
type ValidationResult struct {
	Errors []FieldError
}

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validation failure codes.
const (
	CodeType      = "type"
	CodeRequired  = "required"
	CodeDistinct  = "distinct"
	CodeMalformed = "malformed"
)

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// Valid creates a successful validation result.
func Valid() ValidationResult {
	return ValidationResult{}
}

// Invalid creates a failed validation result with errors.
func Invalid(errors ...FieldError) ValidationResult {
	return ValidationResult{Errors: errors}
}

// NewFieldError creates a field error with a formatted message.
func NewFieldError(field, code, format string, args ...any) FieldError {
	return FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValid reports whether no failures were recorded.
func (vr ValidationResult) IsValid() bool { return len(vr.Errors) == 0 }

// Has reports whether a failure was recorded for field.
func (vr ValidationResult) Has(field string) bool {
	for _, fe := range vr.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Add records a failure.
func (vr *ValidationResult) Add(fe FieldError) {
	vr.Errors = append(vr.Errors, fe)
}

// Combine merges multiple validation results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.IsValid() && other.IsValid() {
		return Valid()
	}
	all := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	all = append(all, vr.Errors...)
	all = append(all, other.Errors...)
	return Invalid(all...)
}

// Fields lists the failing fields, sorted and without duplicates.
func (vr ValidationResult) Fields() []string {
	seen := make(map[string]bool, len(vr.Errors))
	var fields []string
	for _, fe := range vr.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			fields = append(fields, fe.Field)
		}
	}
	sort.Strings(fields)
	return fields
}

// ToError converts a validation result to a classified validation error
// carrying every failure in its "fields" context.
func (vr ValidationResult) ToError(message string) error {
	if vr.IsValid() {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, fe := range vr.Errors {
		messages = append(messages, fe.Error())
	}
	return errors.ValidationError(message).
		WithContext("fields", strings.Join(messages, "; ")).
		WithContext("failed", vr.Fields()).
		Build()
}

// ValidatorChain allows chaining multiple validators.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator to the chain.
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	result := Valid()
	for _, validator := range vc.validators {
		result = result.Combine(validator(value))
	}
	return result
}

// NotBlank validates that the string selected by get is not empty after trimming.
func NotBlank[T any](field string, get func(T) string) Validator[T] {
	return func(value T) ValidationResult {
		if strings.TrimSpace(get(value)) == "" {
			return Invalid(NewFieldError(field, CodeRequired, "must not be empty"))
		}
		return Valid()
	}
}
