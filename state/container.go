package state

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/flux/observability"
)

// Container owns the current root state reference. Reads and swaps are
// synchronized; the RootState values themselves are never mutated.
type Container struct {
	mu       sync.RWMutex
	root     *RootState
	observer observability.Observer
}

// NewContainer creates a Container holding an empty root state.
func NewContainer(observer observability.Observer) *Container {
	return &Container{
		root:     &RootState{slices: map[string]any{}},
		observer: observability.OrNoOp(observer),
	}
}

// Get returns the current root state.
func (c *Container) Get() *RootState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// UpdateSlice installs a new root state that is a shallow copy of the current
// one with name rebound to value, and returns it. Holders of the previous root
// state keep seeing the old values.
func (c *Container) UpdateSlice(ctx context.Context, name string, value any) *RootState {
	c.mu.Lock()
	next := c.root.with(name, value)
	c.root = next
	c.mu.Unlock()

	observability.Emit(ctx, c.observer, EventSliceUpdate, observability.LevelVerbose, "state.Container", map[string]any{
		"slice":  name,
		"slices": next.Len(),
	})

	return next
}

// Replace swaps the whole root state without merging. A nil root state is
// replaced by an empty one.
func (c *Container) Replace(ctx context.Context, root *RootState) {
	if root == nil {
		root = &RootState{slices: map[string]any{}}
	}

	c.mu.Lock()
	c.root = root
	c.mu.Unlock()

	observability.Emit(ctx, c.observer, EventReplace, observability.LevelInfo, "state.Container", map[string]any{
		"slices": root.Len(),
	})
}
