package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/systemstart/buildsteps/pkg/api"
	"github.com/systemstart/buildsteps/pkg/build"
)

type envVar struct {
	key   string
	value text
}

// envAction sets environment variables in order. Later values see the
// earlier ones through .env.
type envAction struct {
	vars []envVar
}

func newEnvAction(list api.EnvList) (*envAction, error) {
	a := &envAction{vars: make([]envVar, 0, len(list))}
	for _, v := range list {
		if v.Key == "" {
			return nil, errors.New("empty variable name")
		}
		t, err := parseText(v.Key, v.Value)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", v.Key, err)
		}
		a.vars = append(a.vars, envVar{key: v.Key, value: t})
	}
	return a, nil
}

func (a *envAction) Kind() string { return api.ActionEnv }

func (a *envAction) Run(_ context.Context, bc *build.Context) error {
	for _, v := range a.vars {
		value, err := v.value.render(templateData(bc))
		if err != nil {
			return fmt.Errorf("%s: %w", v.key, err)
		}
		bc.Env.Set(v.key, value)
	}
	return nil
}
