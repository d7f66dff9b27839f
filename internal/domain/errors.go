package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks structural rule violations rejected at a mutation
	// boundary. The graph is left unchanged.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks operations on ids that do not exist.
	ErrNotFound = errors.New("not found")
)

// Validation rules reported in ValidationError.Rule.
const (
	RuleRequired       = "required"
	RuleDuplicateID    = "duplicate_id"
	RuleDateRange      = "date_range"
	RuleContainment    = "containment"
	RuleTasksOutside   = "tasks_outside_phase"
	RuleDerivedEnd     = "derived_end"
	RulePhaseKind      = "phase_kind"
	RuleSupportYears   = "support_years"
	RuleSelfDependency = "self_dependency"
	RuleCycle          = "cycle"
	RuleUnknownRef     = "unknown_reference"
	RuleParentTask     = "parent_task"
	RuleAllocation     = "allocation_range"
	RuleHourlyRate     = "hourly_rate"
)

// ValidationError names the field and the rule that rejected a value.
type ValidationError struct {
	Field string
	Rule  string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s (%s)", ErrValidation.Error(), e.Msg, e.Rule)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", ErrValidation.Error(), e.Field, e.Msg, e.Rule)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies the kind and id of a missing entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Invalid builds a ValidationError with a formatted message.
func Invalid(field, rule, format string, args ...any) error {
	return &ValidationError{Field: field, Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// RuleOf returns the rule of the first ValidationError in err's chain, or ""
// when err carries none.
func RuleOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Rule
	}
	return ""
}
