// Package observability reports what the dispatcher, the root state
// container, and stores do. Every component emits Events to an Observer;
// the Observer decides whether they become log lines, span events, or
// counters.
package observability

import (
	"context"
	"time"
)

// EventType names an event, such as "dispatch.start" or "store.notify".
// The emitting package declares its own constants.
type EventType string

// Event is one occurrence reported by a component. Source is the emitting
// function, for example "store.Root". Data carries the event's attributes
// and is never mutated after emission.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events for logging, tracing, or metrics. OnEvent is called
// synchronously from inside dispatch cycles and must not dispatch actions.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit stamps an event with the current time and hands it to observer.
// A nil observer discards the event.
func Emit(ctx context.Context, observer Observer, typ EventType, level Level, source string, data map[string]any) {
	if observer == nil {
		return
	}
	observer.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

// OrNoOp returns observer, or NoOpObserver when observer is nil.
func OrNoOp(observer Observer) Observer {
	if observer == nil {
		return NoOpObserver{}
	}
	return observer
}
