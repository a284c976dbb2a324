package build

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks problems detected before any step runs.
	ErrConfiguration = errors.New("configuration error")

	ErrDuplicateStep  = fmt.Errorf("%w: duplicate step", ErrConfiguration)
	ErrInvalidStep    = fmt.Errorf("%w: invalid step", ErrConfiguration)
	ErrUnknownStep    = fmt.Errorf("%w: unknown step", ErrConfiguration)
	ErrNotOptional    = fmt.Errorf("%w: step is not optional", ErrConfiguration)
	ErrMalformedToken = fmt.Errorf("%w: malformed step selector", ErrConfiguration)

	// ErrStepFailed marks a failed step action.
	ErrStepFailed = errors.New("step failed")
)

// StepError reports which step failed and why.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Is makes every StepError match ErrStepFailed.
func (e *StepError) Is(target error) bool {
	return target == ErrStepFailed
}
