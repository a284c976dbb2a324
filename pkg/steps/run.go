package steps

import (
	"context"
	"errors"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
)

// runAction starts a local subprocess.
type runAction struct {
	args              []text
	dir               string
	withConfigureArgs bool
}

func newRunAction(cfg *api.RunConfig, baseDir string) (*runAction, error) {
	if len(cfg.Args) == 0 {
		return nil, errors.New("no arguments")
	}
	args, err := parseTexts("run", cfg.Args)
	if err != nil {
		return nil, err
	}
	return &runAction{
		args:              args,
		dir:               workDir(baseDir, cfg.Dir),
		withConfigureArgs: cfg.WithConfigureArgs,
	}, nil
}

func (a *runAction) Kind() string { return api.ActionRun }

func (a *runAction) Run(ctx context.Context, bc *build.Context) error {
	argv, err := renderAll(a.args, templateData(bc))
	if err != nil {
		return err
	}
	var extra []string
	if a.withConfigureArgs {
		extra = bc.ConfigureArgs
	}
	_, err = bc.Runner.Run(ctx, bc.RunOptions(a.dir), argv, extra)
	return err
}

// shellAction runs a command line through the platform shell.
type shellAction struct {
	cmdline text
	dir     string
}

func newShellAction(cmdline, baseDir string) (*shellAction, error) {
	t, err := parseText("shell", cmdline)
	if err != nil {
		return nil, err
	}
	return &shellAction{cmdline: t, dir: baseDir}, nil
}

func (a *shellAction) Kind() string { return api.ActionShell }

func (a *shellAction) Run(ctx context.Context, bc *build.Context) error {
	cmdline, err := a.cmdline.render(templateData(bc))
	if err != nil {
		return err
	}
	_, err = bc.Runner.Shell(ctx, bc.RunOptions(a.dir), cmdline)
	return err
}
