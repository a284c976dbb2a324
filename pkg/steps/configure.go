package steps

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/deps"
)

// configureArgsAction resolves dependency arguments and stores them, plus
// any appended arguments, as the run's configure arguments.
type configureArgsAction struct {
	dependencies  []string
	substitutions map[string]text
	appendArgs    []text
}

func newConfigureArgsAction(cfg *api.ConfigureArgsConfig) (*configureArgsAction, error) {
	a := &configureArgsAction{
		dependencies:  slices.Clone(cfg.Dependencies),
		substitutions: make(map[string]text, len(cfg.Substitutions)),
	}
	for k, v := range cfg.Substitutions {
		t, err := parseText(k, v)
		if err != nil {
			return nil, fmt.Errorf("substitution %s: %w", k, err)
		}
		a.substitutions[k] = t
	}
	var err error
	if a.appendArgs, err = parseTexts("append", cfg.Append); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *configureArgsAction) Kind() string { return api.ActionConfigureArgs }

func (a *configureArgsAction) Run(_ context.Context, bc *build.Context) error {
	data := templateData(bc)

	subs := make(map[string]string, len(a.substitutions))
	for _, k := range slices.Sorted(maps.Keys(a.substitutions)) {
		v, err := a.substitutions[k].render(data)
		if err != nil {
			return fmt.Errorf("substitution %s: %w", k, err)
		}
		subs[k] = v
	}

	if _, ok := subs[deps.PlatformKey]; !ok {
		if platform, ok := bc.Env.Lookup(deps.PlatformEnv); ok {
			subs[deps.PlatformKey] = platform
		}
	}

	if bc.Deps == nil {
		return errors.New("no dependency resolver configured")
	}
	args, err := bc.Deps.Args(a.dependencies, subs)
	if err != nil {
		return fmt.Errorf("resolving dependency arguments: %w", err)
	}

	extra, err := renderAll(a.appendArgs, data)
	if err != nil {
		return err
	}
	bc.SetConfigureArgs(append(args, extra...))
	return nil
}
