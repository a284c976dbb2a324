package build

import (
	"context"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

// Action is the work performed by a step.
type Action func(ctx context.Context, bc *Context) error

// Step is a named unit of build work.
type Step struct {
	Name string
	// Optional steps can be toggled by a Selector.
	Optional bool
	// DefaultEnabled is only consulted for optional steps.
	DefaultEnabled bool
	// Conditions gate the step; empty means always eligible.
	Conditions []Condition
	Action     Action
}

// StepOption customizes a Step built by NewStep.
type StepOption func(*Step)

// Optional marks the step optional with the given default.
func Optional(defaultEnabled bool) StepOption {
	return func(s *Step) {
		s.Optional = true
		s.DefaultEnabled = defaultEnabled
	}
}

// When adds a condition. Repeated use ORs the conditions together.
func When(c Condition) StepOption {
	return func(s *Step) {
		s.Conditions = append(s.Conditions, c)
	}
}

// NewStep builds a Step. An empty name falls back to the action's function name.
func NewStep(name string, action Action, opts ...StepOption) Step {
	s := Step{Name: name, Action: action}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Name == "" {
		s.Name = funcName(action)
	}
	return s
}

// Eligible reports whether the step's conditions match env.
func (s Step) Eligible(env map[string]string) bool {
	return Matches(s.Conditions, env)
}

func (s Step) clone() Step {
	s.Conditions = slices.Clone(s.Conditions)
	for i, c := range s.Conditions {
		s.Conditions[i] = maps.Clone(c)
	}
	return s
}

func funcName(fn Action) string {
	if fn == nil {
		return ""
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	// pkg.Func, pkg.(*T).Method, pkg.Func.func1.2
	parts := strings.Split(name, ".")[1:]
	for len(parts) > 1 && isClosureSuffix(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func isClosureSuffix(s string) bool {
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}
