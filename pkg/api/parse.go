package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// LoadRecipe reads a build.yaml file, sets Dir/FilePath, and validates it.
func LoadRecipe(filename string) (*Recipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	r.FilePath = absPath
	r.Dir = filepath.Dir(absPath)

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating recipe %s: %w", filename, err)
	}

	return &r, nil
}

// CheckRequires verifies that version satisfies the recipe's requires constraint.
func (r *Recipe) CheckRequires(version string) error {
	if r.Requires == "" {
		return nil
	}
	c, err := semver.NewConstraint(r.Requires)
	if err != nil {
		return fmt.Errorf("parsing requires %q: %w", r.Requires, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parsing version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("recipe requires format %s, this tool provides %s", r.Requires, version)
	}
	return nil
}

// ManifestPath returns the dependency manifest path resolved against the recipe directory.
func (r *Recipe) ManifestPath() string {
	if r.Manifest == "" || filepath.IsAbs(r.Manifest) {
		return r.Manifest
	}
	return filepath.Join(r.Dir, r.Manifest)
}
