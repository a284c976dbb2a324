package build

import (
	"slices"

	"github.com/google/uuid"
	"github.com/systemstart/buildsteps/pkg/deps"
	"github.com/systemstart/buildsteps/pkg/runner"
)

// Context is the mutable state threaded through every step of one run.
// It is created per run and never shared between runs.
type Context struct {
	RunID   string
	Env     *Env
	Options Options
	// ConfigureArgs is scratch space one step fills and later steps read.
	ConfigureArgs []string

	Runner   *runner.Runner
	Deps     deps.Resolver
	Observer Observer
}

// NewContext creates a run context with a fresh run ID and a local-only runner.
func NewContext(env *Env, opts Options) *Context {
	if env == nil {
		env = NewEnv()
	}
	return &Context{
		RunID:   uuid.NewString(),
		Env:     env,
		Options: opts,
		Runner:  runner.New(nil),
		Deps:    deps.None{},
	}
}

// RunOptions returns runner options carrying the current environment.
func (c *Context) RunOptions(dir string) runner.Options {
	return runner.Options{Dir: dir, Env: c.Env.Environ()}
}

// SetConfigureArgs replaces the configure argument scratch value.
func (c *Context) SetConfigureArgs(args []string) {
	c.ConfigureArgs = slices.Clone(args)
}

func (c *Context) observer() Observer {
	if c.Observer == nil {
		return nopObserver{}
	}
	return c.Observer
}
