package build

import (
	"maps"
	"slices"
	"strings"
)

// Condition requires every listed environment variable to hold exactly the given value.
type Condition map[string]string

// Matches reports whether every entry of c is present in env with an equal value.
// A variable missing from env never matches.
func (c Condition) Matches(env map[string]string) bool {
	for key, want := range c {
		got, ok := env[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// String renders the condition as sorted KEY=VALUE pairs joined by '&'.
func (c Condition) String() string {
	parts := make([]string, 0, len(c))
	for _, key := range slices.Sorted(maps.Keys(c)) {
		parts = append(parts, key+"="+c[key])
	}
	return strings.Join(parts, "&")
}

// Matches reports whether a step gated by conditions is eligible under env.
// No conditions means always eligible; otherwise any one matching condition suffices.
func Matches(conditions []Condition, env map[string]string) bool {
	if len(conditions) == 0 {
		return true
	}
	return slices.ContainsFunc(conditions, func(c Condition) bool {
		return c.Matches(env)
	})
}

// MissingKeys returns the variables referenced by conditions that are absent from env, sorted.
func MissingKeys(conditions []Condition, env map[string]string) []string {
	var missing []string
	for _, c := range conditions {
		for key := range c {
			if _, ok := env[key]; !ok && !slices.Contains(missing, key) {
				missing = append(missing, key)
			}
		}
	}
	slices.Sort(missing)
	return missing
}
