package steps

import (
	"context"
	"fmt"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
)

// NewStep creates a build.Step from a StepConfig. Relative paths in actions
// resolve against baseDir. Templates are parsed here so mistakes surface
// before any step runs.
func NewStep(cfg api.StepConfig, baseDir string) (build.Step, error) {
	actions := make([]Action, 0, len(cfg.Actions))
	for i, acfg := range cfg.Actions {
		a, err := NewAction(acfg, baseDir)
		if err != nil {
			return build.Step{}, fmt.Errorf("%w: step %q: action %d: %w", build.ErrInvalidStep, cfg.Name, i, err)
		}
		actions = append(actions, a)
	}

	opts := make([]build.StepOption, 0, len(cfg.Conditions)+1)
	if cfg.Optional {
		opts = append(opts, build.Optional(cfg.DefaultEnabled()))
	}
	for _, c := range cfg.Conditions {
		opts = append(opts, build.When(build.Condition(c)))
	}

	return build.NewStep(cfg.Name, sequence(actions), opts...), nil
}

// NewAction creates the action described by cfg.
func NewAction(cfg api.ActionConfig, baseDir string) (Action, error) {
	kinds := cfg.Kinds()
	if len(kinds) != 1 {
		return nil, fmt.Errorf("expected exactly one action kind, found %d", len(kinds))
	}

	switch kinds[0] {
	case api.ActionEnv:
		return newEnvAction(*cfg.Env)
	case api.ActionConfigureArgs:
		return newConfigureArgsAction(cfg.ConfigureArgs)
	case api.ActionRun:
		return newRunAction(cfg.Run, baseDir)
	case api.ActionShell:
		return newShellAction(cfg.Shell, baseDir)
	case api.ActionSSH:
		return newSSHAction(cfg.SSH)
	case api.ActionCopy:
		return newCopyAction(cfg.Copy, baseDir)
	default:
		return nil, fmt.Errorf("unknown action kind: %s", kinds[0])
	}
}

func sequence(actions []Action) build.Action {
	return func(ctx context.Context, bc *build.Context) error {
		for _, a := range actions {
			if err := a.Run(ctx, bc); err != nil {
				return fmt.Errorf("%s: %w", a.Kind(), err)
			}
		}
		return nil
	}
}
