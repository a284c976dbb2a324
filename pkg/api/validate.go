package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/systemstart/buildsteps/pkg/build"
	"github.com/systemstart/buildsteps/pkg/runner"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	optionNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		_ = v.RegisterValidation("step_name", func(fl validator.FieldLevel) bool {
			return build.ValidStepName(fl.Field().String())
		})
		_ = v.RegisterValidation("option_name", func(fl validator.FieldLevel) bool {
			return optionNamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("semver_constraint", func(fl validator.FieldLevel) bool {
			_, err := semver.NewConstraint(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("remote_target", func(fl validator.FieldLevel) bool {
			return runner.ParseTarget(fl.Field().String()).Remote()
		})

		validateInst = v
	})
	return validateInst
}

// Validate checks the recipe configuration for errors.
func (r *Recipe) Validate() error {
	if err := validatorInstance().Struct(r); err != nil {
		return fieldErrors(err)
	}

	if err := validateOptions(r.Options); err != nil {
		return err
	}

	names := make(map[string]int)
	for i, step := range r.Steps {
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if step.Default != nil && !step.Optional {
			return fmt.Errorf("step %q: default is only meaningful for optional steps", step.Name)
		}
		for j, action := range step.Actions {
			if kinds := action.Kinds(); len(kinds) != 1 {
				return fmt.Errorf("step %q: action %d: exactly one of env, configureArgs, run, shell, ssh, copy is required (found %s)",
					step.Name, j, describeKinds(kinds))
			}
		}
	}

	return nil
}

func validateOptions(opts []OptionConfig) error {
	longs := make(map[string]bool)
	shorts := make(map[string]bool)
	for _, opt := range opts {
		if longs[opt.Long] {
			return fmt.Errorf("option --%s: duplicate long name", opt.Long)
		}
		longs[opt.Long] = true
		if opt.Short != "" {
			if shorts[opt.Short] {
				return fmt.Errorf("option --%s: duplicate short name -%s", opt.Long, opt.Short)
			}
			shorts[opt.Short] = true
		}
	}
	return nil
}

func describeKinds(kinds []string) string {
	if len(kinds) == 0 {
		return "none"
	}
	return strings.Join(kinds, ", ")
}

func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Recipe."), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
