package api

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// FormatVersion is the recipe format version checked against Recipe.Requires.
	FormatVersion = "1.2.0"

	DefaultRecipeFilename = "build.yaml"

	ActionEnv           = "env"
	ActionConfigureArgs = "configureArgs"
	ActionRun           = "run"
	ActionShell         = "shell"
	ActionSSH           = "ssh"
	ActionCopy          = "copy"
)

// Recipe is the build.yaml configuration format.
type Recipe struct {
	// Requires is a semver constraint on FormatVersion.
	Requires string `yaml:"requires" validate:"omitempty,semver_constraint"`
	// Manifest is the dependency manifest path, relative to the recipe.
	Manifest string         `yaml:"manifest"`
	Options  []OptionConfig `yaml:"options" validate:"dive"`
	Steps    []StepConfig   `yaml:"steps" validate:"required,min=1,dive"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// OptionConfig declares a command-line option.
type OptionConfig struct {
	Long    string `yaml:"long" validate:"required,option_name"`
	Short   string `yaml:"short" validate:"omitempty,len=1,alphanum"`
	Help    string `yaml:"help"`
	Dest    string `yaml:"dest" validate:"omitempty,option_name"`
	Default string `yaml:"default"`
	Const   string `yaml:"const"`
}

// StepConfig declares one build step.
type StepConfig struct {
	Name     string `yaml:"name" validate:"required,step_name"`
	Optional bool   `yaml:"optional"`
	// Default only applies to optional steps; unset means enabled.
	Default    *bool               `yaml:"default,omitempty"`
	Conditions []map[string]string `yaml:"conditions" validate:"dive,min=1"`
	Actions    []ActionConfig      `yaml:"actions" validate:"required,min=1,dive"`
}

// DefaultEnabled resolves the optional default.
func (s StepConfig) DefaultEnabled() bool {
	return s.Default == nil || *s.Default
}

// ActionConfig is one action of a step. Exactly one field must be set.
type ActionConfig struct {
	Env           *EnvList             `yaml:"env,omitempty"`
	ConfigureArgs *ConfigureArgsConfig `yaml:"configureArgs,omitempty"`
	Run           *RunConfig           `yaml:"run,omitempty"`
	Shell         string               `yaml:"shell,omitempty"`
	SSH           *SSHConfig           `yaml:"ssh,omitempty"`
	Copy          *CopyConfig          `yaml:"copy,omitempty"`
}

// Kinds lists the action kinds that are set.
func (a ActionConfig) Kinds() []string {
	var kinds []string
	if a.Env != nil {
		kinds = append(kinds, ActionEnv)
	}
	if a.ConfigureArgs != nil {
		kinds = append(kinds, ActionConfigureArgs)
	}
	if a.Run != nil {
		kinds = append(kinds, ActionRun)
	}
	if a.Shell != "" {
		kinds = append(kinds, ActionShell)
	}
	if a.SSH != nil {
		kinds = append(kinds, ActionSSH)
	}
	if a.Copy != nil {
		kinds = append(kinds, ActionCopy)
	}
	return kinds
}

// EnvVar is one templated environment assignment.
type EnvVar struct {
	Key   string
	Value string
}

// EnvList is a YAML mapping decoded in document order.
type EnvList []EnvVar

// UnmarshalYAML keeps the key order of the mapping node.
func (l *EnvList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: env must be a mapping", node.Line)
	}
	out := make(EnvList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var kv EnvVar
		if err := node.Content[i].Decode(&kv.Key); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&kv.Value); err != nil {
			return fmt.Errorf("env %q: %w", kv.Key, err)
		}
		out = append(out, kv)
	}
	*l = out
	return nil
}

// ConfigureArgsConfig fills the configure argument scratch value.
type ConfigureArgsConfig struct {
	// Dependencies to resolve; empty means all.
	Dependencies  []string          `yaml:"dependencies"`
	Substitutions map[string]string `yaml:"substitutions"`
	Append        []string          `yaml:"append"`
}

// RunConfig starts a local subprocess.
type RunConfig struct {
	Args              []string `yaml:"args" validate:"required,min=1"`
	Dir               string   `yaml:"dir"`
	WithConfigureArgs bool     `yaml:"withConfigureArgs"`
}

// UnmarshalYAML accepts either a plain argument sequence or the full mapping.
func (r *RunConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&r.Args)
	}
	type plain RunConfig
	return node.Decode((*plain)(r))
}

// SSHConfig runs commands in one remote shell session.
type SSHConfig struct {
	Target   string     `yaml:"target" validate:"required,remote_target"`
	Commands [][]string `yaml:"commands" validate:"required,min=1,dive,min=1"`
}

// CopyConfig copies files, either side may be user@host:path.
type CopyConfig struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
	Dir  string `yaml:"dir"`
}
