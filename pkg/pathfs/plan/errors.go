package plan

import (
	"fmt"
)

// ValidationError reports a step that cannot be applied as written.
type ValidationError struct {
	Step   Step
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error for step %s (%s): %s: %v",
			e.Step.ID, e.Step.Op, e.Reason, e.Cause)
	}
	return fmt.Sprintf("validation error for step %s (%s): %s",
		e.Step.ID, e.Step.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// DependencyError reports "after" references to steps that do not exist.
type DependencyError struct {
	Step         Step
	Dependencies []string
	Missing      []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency error for step %s: missing dependencies %v (required: %v)",
		e.Step.ID, e.Missing, e.Dependencies)
}

// StepError reports the step at which execution stopped.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s (%s %s) failed: %v", e.Step.ID, e.Step.Op, e.Step.Subject(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
