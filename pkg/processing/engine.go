package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/deps"
	"github.com/systemstart/buildsteps/pkg/options"
	"github.com/systemstart/buildsteps/pkg/steps"
)

// Engine runs the steps declared by one recipe.
type Engine struct {
	recipe   *api.Recipe
	registry *build.Registry
	manifest *deps.Manifest
}

// NewEngine registers the recipe's steps in declaration order and loads its
// dependency manifest, if any.
func NewEngine(recipe *api.Recipe) (*Engine, error) {
	reg := build.NewRegistry()
	for _, cfg := range recipe.Steps {
		step, err := steps.NewStep(cfg, recipe.Dir)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(step); err != nil {
			return nil, err
		}
	}

	e := &Engine{recipe: recipe, registry: reg}
	if path := recipe.ManifestPath(); path != "" {
		m, err := deps.LoadManifest(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", build.ErrConfiguration, err)
		}
		e.manifest = m
	}
	return e, nil
}

// Registry returns the engine's step registry.
func (e *Engine) Registry() *build.Registry {
	return e.registry
}

// Options builds the option set for the recipe, including --steps.
func (e *Engine) Options() (*options.Set, error) {
	set := options.NewSet()
	for _, o := range e.recipe.Options {
		err := set.Add(options.Option{
			Long:    o.Long,
			Short:   o.Short,
			Help:    o.Help,
			Dest:    o.Dest,
			Default: o.Default,
			Const:   o.Const,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := set.EnsureSteps(); err != nil {
		return nil, err
	}
	return set, nil
}

// Enabled resolves the --steps value held in opts.
func (e *Engine) Enabled(opts build.Options) (build.EnabledSet, error) {
	sel, err := build.ParseSelector(opts.Get(options.StepsDest))
	if err != nil {
		return nil, err
	}
	return e.registry.Resolve(sel)
}

// Prepare wires the dependency manifest and a logging observer into bc
// unless the caller already set them.
func (e *Engine) Prepare(bc *build.Context) {
	if _, none := bc.Deps.(deps.None); (bc.Deps == nil || none) && e.manifest != nil {
		bc.Deps = e.manifest
	}
	if bc.Observer == nil {
		bc.Observer = NewLogObserver(slog.Default(), bc)
	}
}

// Run resolves the step selection from bc.Options and runs the registry.
func (e *Engine) Run(ctx context.Context, bc *build.Context) error {
	enabled, err := e.Enabled(bc.Options)
	if err != nil {
		return err
	}
	e.Prepare(bc)

	slog.Info("starting build", "run", bc.RunID, "recipe", e.recipe.FilePath, "enabled", enabled.Names())
	if err := e.registry.Run(ctx, bc, enabled); err != nil {
		return err
	}
	slog.Info("build succeeded", "run", bc.RunID)
	return nil
}

// Plan reports, without running anything, which steps the current
// selection and environment would run.
func (e *Engine) Plan(bc *build.Context) ([]build.PlanEntry, error) {
	enabled, err := e.Enabled(bc.Options)
	if err != nil {
		return nil, err
	}
	return e.registry.Plan(bc.Env.Snapshot(), enabled), nil
}
