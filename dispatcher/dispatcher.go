// Package dispatcher sequences callback invocation for one payload at a time.
//
// Callbacks are invoked in registration order. A callback can require other
// callbacks to run first by calling WaitFor with their ids; the dependency
// edges are declared at call time, and a cycle is detected the moment a
// callback waits on another callback that is still executing.
//
//	d := dispatcher.New[string](dispatcher.DefaultConfig(), nil)
//	first := d.Register(func(ctx context.Context, p string) error { return nil })
//	d.Register(func(ctx context.Context, p string) error {
//	    return d.WaitFor(first)
//	})
//	_, err := d.Dispatch(ctx, "payload")
//
// Dispatch is single-flight: calling it while a cycle is in progress returns
// ErrAlreadyDispatching without invoking anything. Register and Unregister are
// safe for concurrent use. WaitFor must only be called from inside a callback
// of the running cycle.
package dispatcher

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tailored-agentic-units/flux/observability"
)

// ID identifies a registered callback. Ids are never reused.
type ID string

// Callback receives the payload of the running cycle. A non-nil error aborts
// the cycle and is returned from Dispatch.
type Callback[P any] func(ctx context.Context, payload P) error

// Dispatcher owns the callback registry and the per-cycle bookkeeping.
type Dispatcher[P any] struct {
	prefix   string
	observer observability.Observer

	mu        sync.RWMutex
	lastID    uint64
	callbacks map[ID]Callback[P]
	order     []ID

	// Cycle state; only touched by the goroutine running Dispatch.
	dispatching atomic.Bool
	pending     map[ID]bool
	handled     map[ID]bool
	payload     P
	ctx         context.Context
}

// New creates a Dispatcher. A nil observer discards events.
func New[P any](cfg Config, observer observability.Observer) *Dispatcher[P] {
	prefix := cfg.IDPrefix
	if prefix == "" {
		prefix = defaultIDPrefix
	}

	return &Dispatcher[P]{
		prefix:    prefix,
		observer:  observability.OrNoOp(observer),
		callbacks: make(map[ID]Callback[P]),
		pending:   make(map[ID]bool),
		handled:   make(map[ID]bool),
	}
}

// Register stores callback and returns a fresh id.
func (d *Dispatcher[P]) Register(callback Callback[P]) ID {
	d.mu.Lock()
	d.lastID++
	id := ID(d.prefix + strconv.FormatUint(d.lastID, 10))
	d.callbacks[id] = callback
	d.order = append(d.order, id)
	count := len(d.order)
	d.mu.Unlock()

	observability.Emit(context.Background(), d.observer, EventRegister, observability.LevelVerbose, "dispatcher.Register", map[string]any{
		"id":        string(id),
		"callbacks": count,
	})

	return id
}

// Unregister removes the callback registered under id. It returns
// ErrUnknownID if id was never registered or was already removed; the
// registry is left untouched in that case.
func (d *Dispatcher[P]) Unregister(id ID) (ID, error) {
	d.mu.Lock()
	if _, exists := d.callbacks[id]; !exists {
		d.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	delete(d.callbacks, id)
	d.order = slices.DeleteFunc(d.order, func(existing ID) bool {
		return existing == id
	})
	count := len(d.order)
	d.mu.Unlock()

	observability.Emit(context.Background(), d.observer, EventUnregister, observability.LevelVerbose, "dispatcher.Unregister", map[string]any{
		"id":        string(id),
		"callbacks": count,
	})

	return id, nil
}

// WaitFor runs the callbacks named by ids, in the given order, before the
// calling callback continues. Callbacks that already completed in this cycle
// are skipped. It stops at the first failure:
//   - ErrNotDispatching when no cycle is running
//   - ErrCircularDependency when an id is still executing
//   - ErrUnregisteredCallback when an id is not a live registration
//   - the callback's own error
func (d *Dispatcher[P]) WaitFor(ids ...ID) error {
	if !d.dispatching.Load() {
		return ErrNotDispatching
	}

	for _, id := range ids {
		if d.pending[id] {
			if d.handled[id] {
				continue
			}
			observability.Emit(d.ctx, d.observer, EventCycleDetected, observability.LevelWarning, "dispatcher.WaitFor", map[string]any{
				"id": string(id),
			})
			return fmt.Errorf("%w: waiting for %s", ErrCircularDependency, id)
		}

		callback, ok := d.lookup(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnregisteredCallback, id)
		}

		observability.Emit(d.ctx, d.observer, EventWaitFor, observability.LevelVerbose, "dispatcher.WaitFor", map[string]any{
			"id": string(id),
		})

		if err := d.invoke(id, callback); err != nil {
			return err
		}
	}

	return nil
}

// Dispatch invokes every registered callback with payload, in registration
// order, skipping callbacks already run through WaitFor. The in-progress flag
// and the cycle payload are cleared even when a callback fails or panics.
func (d *Dispatcher[P]) Dispatch(ctx context.Context, payload P) (P, error) {
	var zero P

	if !d.dispatching.CompareAndSwap(false, true) {
		return zero, ErrAlreadyDispatching
	}
	defer func() {
		d.payload = zero
		d.ctx = nil
		d.dispatching.Store(false)
	}()

	ids := d.startCycle()
	d.payload = payload
	d.ctx = ctx

	observability.Emit(ctx, d.observer, EventDispatchStart, observability.LevelVerbose, "dispatcher.Dispatch", map[string]any{
		"callbacks": len(ids),
	})

	for _, id := range ids {
		if d.pending[id] {
			continue
		}

		// Unregistered by an earlier callback in this cycle.
		callback, ok := d.lookup(id)
		if !ok {
			continue
		}

		if err := d.invoke(id, callback); err != nil {
			return zero, err
		}
	}

	observability.Emit(ctx, d.observer, EventDispatchComplete, observability.LevelVerbose, "dispatcher.Dispatch", map[string]any{
		"callbacks": len(ids),
		"handled":   len(d.handled),
	})

	return payload, nil
}

// IsDispatching reports whether a cycle is in progress.
func (d *Dispatcher[P]) IsDispatching() bool {
	return d.dispatching.Load()
}

// Len returns the number of registered callbacks.
func (d *Dispatcher[P]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// IDs returns registered ids in invocation order.
func (d *Dispatcher[P]) IDs() []ID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

func (d *Dispatcher[P]) startCycle() []ID {
	clear(d.pending)
	clear(d.handled)
	return d.IDs()
}

func (d *Dispatcher[P]) lookup(id ID) (Callback[P], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	callback, ok := d.callbacks[id]
	return callback, ok
}

func (d *Dispatcher[P]) invoke(id ID, callback Callback[P]) error {
	d.pending[id] = true
	if err := callback(d.ctx, d.payload); err != nil {
		return fmt.Errorf("callback %s: %w", id, err)
	}
	d.handled[id] = true
	return nil
}
