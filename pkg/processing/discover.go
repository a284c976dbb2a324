package processing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/systemstart/buildsteps/pkg/api"
)

// recipeDirs are searched, in order, inside each candidate directory.
var recipeDirs = []string{".", "projectdata"}

// ErrRecipeNotFound is returned when no recipe exists in startDir or its parents.
var ErrRecipeNotFound = errors.New("no recipe found")

// FindRecipe looks for build.yaml in startDir and its projectdata directory,
// then in each parent directory up to the filesystem root.
func FindRecipe(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		for _, sub := range recipeDirs {
			candidate := filepath.Join(dir, sub, api.DefaultRecipeFilename)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or its parents", ErrRecipeNotFound, startDir)
		}
		dir = parent
	}
}
