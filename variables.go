package dmn

import (
	"maps"
	"slices"
)

// Variables are the caller-supplied values for one evaluation.
// They are visible to every expression, and replace the computed value of
// inputs with literal or FEEL expressions that have the same name.
type Variables struct {
	values map[string]any
}

// NewVariables copies m into a new Variables. m may be nil.
func NewVariables(m map[string]any) *Variables {
	v := &Variables{values: maps.Clone(m)}
	if v.values == nil {
		v.values = map[string]any{}
	}
	return v
}

// Get returns the variable's value, and whether it is present.
func (v *Variables) Get(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

// IsPresent reports whether the variable exists (even if its value is nil).
func (v *Variables) IsPresent(name string) bool {
	_, ok := v.values[name]
	return ok
}

// Names returns the variable names in sorted order.
func (v *Variables) Names() []string {
	return slices.Sorted(maps.Keys(v.values))
}

func (v *Variables) Len() int {
	return len(v.values)
}
