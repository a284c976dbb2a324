package build

import (
	"context"
	"fmt"
)

// SkipReason explains why a step did not run.
type SkipReason string

const (
	SkipDisabled  SkipReason = "disabled"
	SkipCondition SkipReason = "condition"
)

// Observer receives step lifecycle callbacks during Registry.Run.
type Observer interface {
	StepStarted(step Step)
	StepSkipped(step Step, reason SkipReason)
	StepFinished(step Step, err error)
}

type nopObserver struct{}

func (nopObserver) StepStarted(Step)             {}
func (nopObserver) StepSkipped(Step, SkipReason) {}
func (nopObserver) StepFinished(Step, error)     {}

// Registry is the ordered list of registered steps.
type Registry struct {
	steps []Step
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends s. Names must be unique and an action is required.
func (r *Registry) Register(s Step) error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStep)
	}
	if !ValidStepName(s.Name) {
		return fmt.Errorf("%w: %q is not a usable step name", ErrInvalidStep, s.Name)
	}
	if s.Action == nil {
		return fmt.Errorf("%w: step %q has no action", ErrInvalidStep, s.Name)
	}
	if prev, exists := r.index[s.Name]; exists {
		return fmt.Errorf("%w: %q (first registered at position %d)", ErrDuplicateStep, s.Name, prev)
	}
	r.index[s.Name] = len(r.steps)
	r.steps = append(r.steps, s.clone())
	return nil
}

// MustRegister is Register for static declarations; it panics on error.
func (r *Registry) MustRegister(s Step) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Steps returns the registered steps in registration order.
func (r *Registry) Steps() []Step {
	out := make([]Step, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.clone()
	}
	return out
}

// Lookup finds a step by name.
func (r *Registry) Lookup(name string) (Step, bool) {
	i, ok := r.index[name]
	if !ok {
		return Step{}, false
	}
	return r.steps[i].clone(), true
}

// Resolve applies sel to the registered steps.
func (r *Registry) Resolve(sel Selector) (EnabledSet, error) {
	return Resolve(r.steps, sel)
}

// Run executes the eligible steps in registration order and stops at the first
// failure. State already written to bc is left as is.
func (r *Registry) Run(ctx context.Context, bc *Context, enabled EnabledSet) error {
	obs := bc.observer()
	for _, step := range r.steps {
		if step.Optional && !enabled.Has(step.Name) {
			obs.StepSkipped(step, SkipDisabled)
			continue
		}
		if !step.Eligible(bc.Env.Snapshot()) {
			obs.StepSkipped(step, SkipCondition)
			continue
		}

		obs.StepStarted(step)
		err := step.Action(ctx, bc)
		obs.StepFinished(step, err)
		if err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

// PlanEntry describes what Run would do with a step given a fixed environment.
type PlanEntry struct {
	Step     Step
	Enabled  bool
	Eligible bool
}

// Runs reports whether the step would execute.
func (p PlanEntry) Runs() bool {
	return p.Enabled && p.Eligible
}

// Plan evaluates selection and conditions against env without running anything.
// Steps that change the environment may make the real run differ.
func (r *Registry) Plan(env map[string]string, enabled EnabledSet) []PlanEntry {
	plan := make([]PlanEntry, 0, len(r.steps))
	for _, step := range r.steps {
		plan = append(plan, PlanEntry{
			Step:     step.clone(),
			Enabled:  !step.Optional || enabled.Has(step.Name),
			Eligible: step.Eligible(env),
		})
	}
	return plan
}
