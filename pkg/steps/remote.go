package steps

import (
	"context"
	"errors"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/runner"
)

// sshAction runs several commands in one remote session.
type sshAction struct {
	target   text
	commands [][]text
}

func newSSHAction(cfg *api.SSHConfig) (*sshAction, error) {
	target, err := parseText("target", cfg.Target)
	if err != nil {
		return nil, err
	}
	a := &sshAction{target: target}
	for _, c := range cfg.Commands {
		if len(c) == 0 {
			return nil, errors.New("empty command")
		}
		args, err := parseTexts("ssh", c)
		if err != nil {
			return nil, err
		}
		a.commands = append(a.commands, args)
	}
	return a, nil
}

func (a *sshAction) Kind() string { return api.ActionSSH }

func (a *sshAction) Run(ctx context.Context, bc *build.Context) error {
	data := templateData(bc)
	target, err := a.target.render(data)
	if err != nil {
		return err
	}
	commands := make([][]string, 0, len(a.commands))
	for _, c := range a.commands {
		argv, err := renderAll(c, data)
		if err != nil {
			return err
		}
		commands = append(commands, argv)
	}

	return bc.Runner.Session(ctx, target, func(s *runner.Session) error {
		for _, argv := range commands {
			if _, err := s.Run(ctx, argv); err != nil {
				return err
			}
		}
		return nil
	})
}

// copyAction copies files between local paths and user@host:path targets.
type copyAction struct {
	from, to text
	dir      string
}

func newCopyAction(cfg *api.CopyConfig, baseDir string) (*copyAction, error) {
	from, err := parseText("from", cfg.From)
	if err != nil {
		return nil, err
	}
	to, err := parseText("to", cfg.To)
	if err != nil {
		return nil, err
	}
	return &copyAction{from: from, to: to, dir: workDir(baseDir, cfg.Dir)}, nil
}

func (a *copyAction) Kind() string { return api.ActionCopy }

func (a *copyAction) Run(ctx context.Context, bc *build.Context) error {
	data := templateData(bc)
	from, err := a.from.render(data)
	if err != nil {
		return err
	}
	to, err := a.to.render(data)
	if err != nil {
		return err
	}
	return bc.Runner.Copy(ctx, bc.RunOptions(a.dir), from, to)
}
