// Package options registers build options on a pflag.FlagSet and collects the
// parsed values into build.Options.
package options

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/systemstart/buildsteps/pkg/build"
)

// StepsDest is the destination holding the optional-step selector.
const StepsDest = "steps"

var ErrDuplicateOption = errors.New("duplicate option")

// Option describes one command-line flag.
type Option struct {
	Long  string
	Short string
	Help  string
	// Dest names the value this option writes; defaults to Long with '-' as '_'.
	Dest    string
	Default string
	// Const makes the flag take no value and store Const into Dest.
	Const string
}

func (o Option) dest() string {
	if o.Dest != "" {
		return o.Dest
	}
	return strings.ReplaceAll(o.Long, "-", "_")
}

// Set is an ordered collection of options. Several options may share a Dest.
type Set struct {
	options []Option
	values  map[string]*destValue
	order   []string
}

// NewSet creates an empty option set.
func NewSet() *Set {
	return &Set{values: make(map[string]*destValue)}
}

// Add registers opt. Long and short spellings must be unique.
func (s *Set) Add(opt Option) error {
	if opt.Long == "" {
		return fmt.Errorf("%w: option needs a long name", build.ErrConfiguration)
	}
	if len(opt.Short) > 1 {
		return fmt.Errorf("%w: option --%s: short form %q must be a single character", build.ErrConfiguration, opt.Long, opt.Short)
	}
	for _, existing := range s.options {
		if existing.Long == opt.Long || (opt.Short != "" && existing.Short == opt.Short) {
			return fmt.Errorf("%w: %w: --%s", build.ErrConfiguration, ErrDuplicateOption, opt.Long)
		}
	}

	dest := opt.dest()
	v, ok := s.values[dest]
	if !ok {
		v = &destValue{}
		s.values[dest] = v
		s.order = append(s.order, dest)
	}
	if opt.Default != "" {
		v.value = opt.Default
	}
	s.options = append(s.options, opt)
	return nil
}

// EnsureSteps adds a --steps option unless one taking a value already writes to
// the steps destination.
func (s *Set) EnsureSteps() error {
	for _, o := range s.options {
		if o.Long == "steps" || (o.dest() == StepsDest && o.Const == "") {
			return nil
		}
	}
	opt := Option{
		Long: "steps",
		Help: "Steps to run, comma separated (all, default, name, +name, -name).",
	}
	if v, ok := s.values[StepsDest]; !ok || v.value == "" {
		opt.Default = build.SelectDefault
	}
	return s.Add(opt)
}

// Options returns the registered options in order.
func (s *Set) Options() []Option {
	return append([]Option(nil), s.options...)
}

// Bind defines every option on fs. A spelling already present on fs is an error.
func (s *Set) Bind(fs *pflag.FlagSet) error {
	for _, opt := range s.options {
		if fs.Lookup(opt.Long) != nil || (opt.Short != "" && fs.ShorthandLookup(opt.Short) != nil) {
			return fmt.Errorf("%w: %w: --%s collides with a built-in flag", build.ErrConfiguration, ErrDuplicateOption, opt.Long)
		}
		v := s.values[opt.dest()]
		if opt.Const == "" {
			fs.VarP(v, opt.Long, opt.Short, opt.Help)
			continue
		}
		f := fs.VarPF(&constValue{dest: v, value: opt.Const}, opt.Long, opt.Short, opt.Help)
		f.NoOptDefVal = opt.Const
	}
	return nil
}

// Values returns the parsed values keyed by destination.
func (s *Set) Values() build.Options {
	values := make(map[string]string, len(s.values))
	for _, dest := range s.order {
		values[dest] = s.values[dest].value
	}
	return build.NewOptions(values)
}

type destValue struct {
	value string
}

func (v *destValue) String() string { return v.value }

func (v *destValue) Set(s string) error {
	v.value = s
	return nil
}

func (v *destValue) Type() string { return "string" }

// constValue stores a fixed value into a shared destination.
type constValue struct {
	dest  *destValue
	value string
}

func (c *constValue) String() string { return "" }

func (c *constValue) Set(s string) error {
	if s != c.value {
		return fmt.Errorf("flag takes no value")
	}
	return c.dest.Set(s)
}

func (c *constValue) Type() string { return "" }
