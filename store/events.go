package store

import "github.com/tailored-agentic-units/flux/observability"

// Store and root event types.
const (
	EventStoreCreate   observability.EventType = "store.create"
	EventStoreNotify   observability.EventType = "store.notify"
	EventRootNotify    observability.EventType = "root.notify"
	EventRootReplace   observability.EventType = "root.replace"
	EventDispatchError observability.EventType = "root.dispatch.error"
)
