package build

import (
	"maps"
	"slices"
	"strings"
)

// Env is an insertion-ordered string mapping holding the build environment.
// A single Env is shared by every step of one run.
type Env struct {
	keys   []string
	values map[string]string
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{values: make(map[string]string)}
}

// EnvFromEnviron builds an environment from KEY=VALUE entries such as os.Environ().
// Entries without '=' are ignored. Later duplicates override earlier ones.
func EnvFromEnviron(environ []string) *Env {
	env := NewEnv()
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		env.Set(key, value)
	}
	return env
}

// Get returns the value for key, or "" if it is unset.
func (e *Env) Get(key string) string {
	return e.values[key]
}

// Lookup returns the value for key and whether it is set.
func (e *Env) Lookup(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Set assigns value to key. New keys are appended to the key order.
func (e *Env) Set(key, value string) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Update assigns every entry of values. Keys are applied in sorted order so the
// resulting key order is deterministic.
func (e *Env) Update(values map[string]string) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		e.Set(key, values[key])
	}
}

// Delete removes key if present.
func (e *Env) Delete(key string) {
	if _, ok := e.values[key]; !ok {
		return
	}
	delete(e.values, key)
	e.keys = slices.DeleteFunc(e.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (e *Env) Keys() []string {
	return slices.Clone(e.keys)
}

// Len returns the number of entries.
func (e *Env) Len() int {
	return len(e.keys)
}

// Environ renders the environment as KEY=VALUE entries for a subprocess.
func (e *Env) Environ() []string {
	out := make([]string, 0, len(e.keys))
	for _, key := range e.keys {
		out = append(out, key+"="+e.values[key])
	}
	return out
}

// Snapshot returns a copy of the current values.
func (e *Env) Snapshot() map[string]string {
	return maps.Clone(e.values)
}

// Clone returns an independent copy that preserves key order.
func (e *Env) Clone() *Env {
	return &Env{keys: slices.Clone(e.keys), values: maps.Clone(e.values)}
}
