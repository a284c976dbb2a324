package build

import "maps"

// Options holds parsed command-line values keyed by destination name.
// It is immutable once created.
type Options struct {
	values map[string]string
}

// NewOptions copies values into an immutable Options.
func NewOptions(values map[string]string) Options {
	return Options{values: maps.Clone(values)}
}

// Get returns the value stored for dest, or "" if none.
func (o Options) Get(dest string) string {
	return o.values[dest]
}

// Lookup returns the value stored for dest and whether one exists.
func (o Options) Lookup(dest string) (string, bool) {
	v, ok := o.values[dest]
	return v, ok
}

// Map returns a copy of all option values.
func (o Options) Map() map[string]string {
	if o.values == nil {
		return map[string]string{}
	}
	return maps.Clone(o.values)
}
