// Package state holds the root state: one immutable mapping from slice name
// to slice value.
//
// Every update produces a new *RootState and leaves the previous one
// untouched, so pointer identity is a valid change detector: the root pointer
// changes if and only if some slice was rebound.
package state

import (
	"encoding/json"
	"maps"
	"slices"
)

// Freezer is implemented by slice values that can be made read-only. Values
// implementing it are frozen when installed in the root state. Freezing is
// not recursive.
type Freezer interface {
	Freeze()
}

// RootState is an immutable snapshot of every slice. The zero value is an
// empty root state.
type RootState struct {
	slices map[string]any
}

// New builds a RootState from a copy of values. Used for bulk restore through
// Container.Replace.
func New(values map[string]any) *RootState {
	rs := &RootState{slices: make(map[string]any, len(values))}
	for name, value := range values {
		rs.slices[name] = freeze(value)
	}
	return rs
}

// Get returns the value of the named slice. A slice installed with a nil value
// reports ok == true.
func (rs *RootState) Get(name string) (value any, ok bool) {
	if rs == nil {
		return nil, false
	}
	value, ok = rs.slices[name]
	return value, ok
}

// Has reports whether the named slice exists.
func (rs *RootState) Has(name string) bool {
	_, ok := rs.Get(name)
	return ok
}

// Len returns the number of slices.
func (rs *RootState) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.slices)
}

// Names returns slice names in sorted order.
func (rs *RootState) Names() []string {
	if rs == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(rs.slices))
}

// Map returns a copy of the slice mapping.
func (rs *RootState) Map() map[string]any {
	if rs == nil {
		return map[string]any{}
	}
	return maps.Clone(rs.slices)
}

func (rs *RootState) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.Map())
}

// with returns a shallow copy of rs with name rebound to value.
func (rs *RootState) with(name string, value any) *RootState {
	next := &RootState{slices: make(map[string]any, rs.Len()+1)}
	if rs != nil {
		maps.Copy(next.slices, rs.slices)
	}
	next.slices[name] = freeze(value)
	return next
}

// Slice returns the named slice converted to S. ok is false when the slice is
// missing or holds a value of another type.
func Slice[S any](rs *RootState, name string) (S, bool) {
	var zero S
	value, ok := rs.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := value.(S)
	if !ok {
		return zero, false
	}
	return typed, true
}

func freeze(value any) any {
	if f, ok := value.(Freezer); ok {
		f.Freeze()
	}
	return value
}
