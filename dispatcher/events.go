package dispatcher

import "github.com/tailored-agentic-units/flux/observability"

// Dispatcher event types.
const (
	EventRegister         observability.EventType = "dispatcher.register"
	EventUnregister       observability.EventType = "dispatcher.unregister"
	EventDispatchStart    observability.EventType = "dispatch.start"
	EventDispatchComplete observability.EventType = "dispatch.complete"
	EventWaitFor          observability.EventType = "dispatch.waitfor"
	EventCycleDetected    observability.EventType = "dispatch.cycle"
)
