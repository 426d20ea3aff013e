package state

import "github.com/tailored-agentic-units/flux/observability"

const (
	EventSliceUpdate observability.EventType = "state.slice.update"
	EventReplace     observability.EventType = "state.replace"
)
