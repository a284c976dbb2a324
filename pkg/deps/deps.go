// Package deps resolves the configure arguments contributed by a project's
// dependencies.
package deps

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

const (
	// PlatformKey is the substitution that overrides a manifest's ambient platform.
	PlatformKey = "platform"
	// PlatformEnv is the environment variable holding the ambient platform.
	PlatformEnv = "OH_PLATFORM"
)

// Resolver returns configure arguments for the named dependencies.
// No names means every known dependency.
type Resolver interface {
	Args(names []string, substitutions map[string]string) ([]string, error)
}

// None is a Resolver with no dependencies.
type None struct{}

// Args fails for any requested name and returns nothing otherwise.
func (None) Args(names []string, _ map[string]string) ([]string, error) {
	if len(names) > 0 {
		return nil, fmt.Errorf("unknown dependency %q: no dependency manifest configured", names[0])
	}
	return nil, nil
}

// Dependency is one manifest entry.
type Dependency struct {
	Name string `yaml:"name"`
	// Platforms restricts the entry; empty means every platform.
	Platforms []string `yaml:"platforms,omitempty"`
	// Args are templates rendered with the substitutions.
	Args []string `yaml:"args"`
}

// Manifest is the dependency manifest file format.
type Manifest struct {
	Dependencies []Dependency `yaml:"dependencies"`

	// Platform is the ambient platform used to filter entries.
	Platform string `yaml:"-"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading dependency manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing dependency manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating dependency manifest %s: %w", filename, err)
	}
	return &m, nil
}

// Validate checks entries for names and parseable templates.
func (m *Manifest) Validate() error {
	names := make(map[string]int)
	for i, d := range m.Dependencies {
		if d.Name == "" {
			return fmt.Errorf("dependency %d: name is required", i)
		}
		if prev, exists := names[d.Name]; exists {
			return fmt.Errorf("dependency %d: duplicate name %q (first defined at %d)", i, d.Name, prev)
		}
		names[d.Name] = i
		for _, arg := range d.Args {
			if _, err := parse(d.Name, arg); err != nil {
				return fmt.Errorf("dependency %q: %w", d.Name, err)
			}
		}
	}
	return nil
}

// WithPlatform returns a copy of m filtering on platform.
func (m *Manifest) WithPlatform(platform string) *Manifest {
	c := *m
	c.Platform = platform
	return &c
}

// Args renders the arguments of names, in manifest order for an empty name list
// and in request order otherwise.
func (m *Manifest) Args(names []string, substitutions map[string]string) ([]string, error) {
	data := map[string]string{PlatformKey: m.Platform}
	maps.Copy(data, substitutions)
	platform := data[PlatformKey]

	selected, err := m.pick(names)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, d := range selected {
		if len(d.Platforms) > 0 && !slices.Contains(d.Platforms, platform) {
			continue
		}
		for _, arg := range d.Args {
			out, err := render(d.Name, arg, data)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", d.Name, err)
			}
			args = append(args, out)
		}
	}
	return args, nil
}

func (m *Manifest) pick(names []string) ([]Dependency, error) {
	if len(names) == 0 {
		return m.Dependencies, nil
	}
	selected := make([]Dependency, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(m.Dependencies, func(d Dependency) bool { return d.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown dependency %q", name)
		}
		selected = append(selected, m.Dependencies[i])
	}
	return selected, nil
}

func parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", text, err)
	}
	return tmpl, nil
}

func render(name, text string, data map[string]string) (string, error) {
	tmpl, err := parse(name, text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", text, err)
	}
	return buf.String(), nil
}
