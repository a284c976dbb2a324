package steps

import (
	"context"
	"path/filepath"

	"github.com/systemstart/buildsteps/pkg/build"
)

// Action is one unit of a recipe step.
type Action interface {
	Kind() string
	Run(ctx context.Context, bc *build.Context) error
}

// workDir resolves dir against the recipe directory.
func workDir(base, dir string) string {
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) || base == "" {
		return dir
	}
	return filepath.Join(base, dir)
}
