package observability

import (
	"context"
	"slices"
)

var (
	_ Observer = NoOpObserver{}
	_ Observer = (*MultiObserver)(nil)
)

// NoOpObserver drops every event. It is what OrNoOp substitutes for a nil
// observer and what the "noop" registry entry resolves to.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// MultiObserver hands each event to several observers, one after another.
// The CLI uses it to log and count the same events.
type MultiObserver struct {
	targets []Observer
}

// NewMultiObserver returns a MultiObserver over targets. Nil entries are
// dropped.
func NewMultiObserver(targets ...Observer) *MultiObserver {
	targets = slices.DeleteFunc(slices.Clone(targets), func(o Observer) bool {
		return o == nil
	})
	return &MultiObserver{targets: targets}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, target := range m.targets {
		target.OnEvent(ctx, event)
	}
}

// Len returns the number of observers events are forwarded to.
func (m *MultiObserver) Len() int {
	return len(m.targets)
}
