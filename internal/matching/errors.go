package matching

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when a candidate or opening carries a value the
// engine refuses to rank, such as a GPA outside [0,5] or a non-positive stipend.
type ValidationError struct {
	Entity string
	ID     string
	Field  string
	Value  any
	Rule   string
	Cause  error
}

func newValidationError(entity, id string, cause error) *ValidationError {
	e := &ValidationError{Entity: entity, ID: id, Cause: cause}

	var fieldErrs validator.ValidationErrors
	if errors.As(cause, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		e.Field = fe.Field()
		e.Value = fe.Value()
		e.Rule = fe.Tag()
		if fe.Param() != "" {
			e.Rule += "=" + fe.Param()
		}
	}

	return e
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s %q: %s=%v violates %s", e.Entity, e.ID, e.Field, e.Value, e.Rule)
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s %q: %v", e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("validation error: %s %q", e.Entity, e.ID)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ConfigurationError is returned when a policy cannot rank the given input
// consistently.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

var errDuplicateID = errors.New("duplicate id")
