package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/observability"
	"github.com/tailored-agentic-units/flux/store"
)

type captureObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (c *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureObserver) count(typ observability.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func newRoot(t *testing.T, opts ...store.Option) *store.Root {
	t.Helper()
	root, err := store.New(&store.Config{Observer: "noop"}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return root
}

// counterSpec increments by the action data, or by one when data is nil.
func counterSpec() *store.Spec {
	return &store.Spec{
		InitialState: func() any { return 0 },
		Handlers: map[string]store.Handler{
			"increment": func(state any, data any, waitFor store.WaitFunc) (any, error) {
				n := state.(int)
				if step, ok := data.(int); ok {
					return n + step, nil
				}
				return n + 1, nil
			},
			"touch": func(state any, data any, waitFor store.WaitFunc) (any, error) {
				return state, nil
			},
		},
	}
}

func mustCreate(t *testing.T, root *store.Root, name string, def store.Definition, opts ...store.StoreOption) *store.Store {
	t.Helper()
	s, err := root.CreateStore(name, def, opts...)
	if err != nil {
		t.Fatalf("CreateStore(%q) failed: %v", name, err)
	}
	return s
}

func await(t *testing.T, f *action.Future) (action.Action, error) {
	t.Helper()
	return f.Await(context.Background())
}
