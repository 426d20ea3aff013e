// Package store merges independently reduced state slices into one immutable
// root state and notifies subscribers exactly when that root state changes.
//
// A Root is the explicit context object that owns the dispatcher, the root
// state container, the root listeners, and the store registry. Create it once
// during initialization and pass it to the code that needs it:
//
//	root, err := store.New(nil)
//	counter, err := root.CreateStore("counter", &store.Spec{
//	    InitialState: func() any { return 0 },
//	    Handlers: map[string]store.Handler{
//	        "increment": func(state any, data any, waitFor store.WaitFunc) (any, error) {
//	            return state.(int) + 1, nil
//	        },
//	    },
//	})
//
//	act, err := root.Dispatch(ctx, "increment", nil).Await(ctx)
//
// # Dispatch
//
// Dispatch accepts a bare action type, a structured action.Action, or a
// Resolver whose eventual value is dispatched once resolved. It never panics
// and never returns an error directly: failures, including panics raised by
// reducers, listeners, or resolvers, settle the returned Future with a
// *DispatchError.
//
// # Single-flight
//
// Only one dispatch cycle runs at a time. The cycle covers the reducers and
// the store listeners; root listeners run after it has ended. A synchronous
// dispatch issued while a cycle is running, whether from a reducer, a store
// listener, or another goroutine, settles with
// dispatcher.ErrAlreadyDispatching. Root listeners may dispatch. Deferred
// actions resolve on their own goroutine and then wait for the running cycle
// to finish before they dispatch.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/dispatcher"
	"github.com/tailored-agentic-units/flux/notify"
	"github.com/tailored-agentic-units/flux/observability"
	"github.com/tailored-agentic-units/flux/state"
)

// RootListener is notified with the new root state and the action that
// produced it. Store creation notifies with the zero Action.
type RootListener func(root *state.RootState, act action.Action)

// Option configures a Root after config-driven initialization.
type Option func(*Root)

// WithObserver overrides the config-selected observer.
func WithObserver(o observability.Observer) Option {
	return func(r *Root) { r.observer = o }
}

// WithLogger routes events to logger through a SlogObserver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) { r.observer = observability.NewSlogObserver(logger) }
}

// WithTracer overrides the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Root) { r.tracer = t }
}

// Root is the process-lifetime coordination context: one dispatcher, one root
// state, and every store created through it.
type Root struct {
	id            string
	name          string
	privatePrefix string

	dispatcher *dispatcher.Dispatcher[action.Action]
	state      *state.Container
	listeners  notify.List[RootListener]

	// cycle serializes dispatch cycles.
	cycle sync.Mutex

	stores   map[string]*Store
	names    map[string]bool
	storesMu sync.RWMutex

	observer observability.Observer
	tracer   trace.Tracer
	metrics  *Metrics
}

// New creates a Root from configuration. A nil cfg uses DefaultConfig.
// Options are applied after the config-selected observer and tracer are
// resolved, so they can override either.
func New(cfg *Config, opts ...Option) (*Root, error) {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	observer, err := observability.GetObserver(c.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	r := &Root{
		id:            uuid.Must(uuid.NewV7()).String(),
		name:          c.Name,
		privatePrefix: c.PrivatePrefix,
		stores:        make(map[string]*Store),
		names:         make(map[string]bool),
		observer:      observer,
		tracer:        otel.Tracer(c.Tracer),
		metrics:       NewMetrics(),
	}

	for _, opt := range opts {
		opt(r)
	}
	r.observer = observability.OrNoOp(r.observer)

	r.dispatcher = dispatcher.New[action.Action](c.Dispatcher, r.observer)
	r.state = state.NewContainer(r.observer)

	return r, nil
}

// ID returns the unique identifier of this Root.
func (r *Root) ID() string {
	return r.id
}

// Name returns the configured name.
func (r *Root) Name() string {
	return r.name
}

// Dispatch normalizes act (see action.Normalize) and dispatches it. data is
// only used when act is a bare action type. The returned Future settles to the
// dispatched action, or to a *DispatchError.
func (r *Root) Dispatch(ctx context.Context, act any, data any) *action.Future {
	in, err := action.Normalize(act, data)
	if err != nil {
		return r.reject(ctx, action.Action{}, err)
	}
	return r.DispatchInput(ctx, in)
}

// DispatchInput dispatches an already-normalized input.
func (r *Root) DispatchInput(ctx context.Context, in action.Input) *action.Future {
	switch in := in.(type) {
	case action.Action:
		return r.dispatchNow(ctx, in)
	case action.Shorthand:
		return r.dispatchNow(ctx, in.Action())
	case action.Deferred:
		return r.dispatchDeferred(ctx, in)
	default:
		return r.reject(ctx, action.Action{}, fmt.Errorf("%w: %T", action.ErrInvalidAction, in))
	}
}

// Subscribe registers a root listener and returns its unsubscribe function.
func (r *Root) Subscribe(listener RootListener) (func(), error) {
	if listener == nil {
		return nil, fmt.Errorf("%w: listener is nil", ErrInvalidArgument)
	}
	return r.listeners.Subscribe(listener), nil
}

// GetState returns the current root state.
func (r *Root) GetState() *state.RootState {
	return r.state.Get()
}

// ReplaceState swaps the entire root state, bypassing reducers. Listeners are
// not notified.
func (r *Root) ReplaceState(root *state.RootState) {
	r.state.Replace(context.Background(), root)

	observability.Emit(context.Background(), r.observer, EventRootReplace, observability.LevelInfo, "store.Root", map[string]any{
		"root":   r.name,
		"slices": r.state.Get().Len(),
	})
}

// GetStores returns a copy of the discoverable stores keyed by name. Stores
// whose name starts with the private prefix are not included.
func (r *Root) GetStores() map[string]*Store {
	r.storesMu.RLock()
	defer r.storesMu.RUnlock()
	return maps.Clone(r.stores)
}

// Store returns a discoverable store by name.
func (r *Root) Store(name string) (*Store, bool) {
	r.storesMu.RLock()
	defer r.storesMu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// Metrics returns a snapshot of the root's counters.
func (r *Root) Metrics() MetricsSnapshot {
	return r.metrics.Snapshot()
}

func (r *Root) dispatchNow(ctx context.Context, act action.Action) *action.Future {
	return r.run(ctx, act, r.cycle.TryLock)
}

func (r *Root) dispatchDeferred(ctx context.Context, in action.Deferred) *action.Future {
	future := action.NewFuture()

	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.settleRejected(ctx, future, action.Action{}, fmt.Errorf("%w: %v", ErrPanic, p))
			}
		}()

		resolved, err := in.Source.Resolve(ctx)
		if err != nil {
			r.settleRejected(ctx, future, action.Action{}, err)
			return
		}

		next, err := action.Normalize(resolved, nil)
		if err != nil {
			r.settleRejected(ctx, future, action.Action{}, err)
			return
		}

		var inner *action.Future
		switch next := next.(type) {
		case action.Deferred:
			inner = r.dispatchDeferred(ctx, next)
		case action.Shorthand:
			inner = r.dispatchQueued(ctx, next.Action())
		case action.Action:
			inner = r.dispatchQueued(ctx, next)
		default:
			inner = r.reject(ctx, action.Action{}, fmt.Errorf("%w: %T", action.ErrInvalidAction, next))
		}

		future.Settle(inner.Await(ctx))
	}()

	return future
}

// dispatchQueued waits for the running cycle, if any, instead of rejecting.
func (r *Root) dispatchQueued(ctx context.Context, act action.Action) *action.Future {
	return r.run(ctx, act, func() bool {
		r.cycle.Lock()
		return true
	})
}

// run dispatches act once acquire has taken the cycle lock. acquire reports
// false when the lock is held elsewhere.
func (r *Root) run(ctx context.Context, act action.Action, acquire func() bool) *action.Future {
	if act.ID == "" {
		act.ID = uuid.Must(uuid.NewV7()).String()
	}

	ctx, span := r.tracer.Start(ctx, "flux.dispatch", trace.WithAttributes(
		attribute.String("flux.root", r.name),
		attribute.String("flux.action.type", act.Type),
		attribute.String("flux.action.id", act.ID),
	))
	defer span.End()

	if err := r.cycleOnce(ctx, act, acquire); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r.reject(ctx, act, err)
	}

	return action.Resolved(act)
}

func (r *Root) cycleOnce(ctx context.Context, act action.Action, acquire func() bool) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	if !acquire() {
		return dispatcher.ErrAlreadyDispatching
	}

	root, changed, err := r.reduce(ctx, act)
	if err != nil {
		return err
	}

	if changed {
		r.notifyRoot(ctx, root, act)
	}

	return nil
}

// reduce runs the dispatcher pass and releases the cycle lock before
// returning, so root listeners run outside the cycle.
func (r *Root) reduce(ctx context.Context, act action.Action) (*state.RootState, bool, error) {
	defer r.cycle.Unlock()

	before := r.state.Get()

	if _, err := r.dispatcher.Dispatch(ctx, act); err != nil {
		return nil, false, err
	}
	r.metrics.RecordDispatch(1)

	after := r.state.Get()
	return after, after != before, nil
}

func (r *Root) notifyRoot(ctx context.Context, root *state.RootState, act action.Action) {
	r.listeners.Notify(func(listener RootListener) {
		listener(root, act)
	})
	r.metrics.RecordRootNotification(1)

	observability.Emit(ctx, r.observer, EventRootNotify, observability.LevelVerbose, "store.Root", map[string]any{
		"root":   r.name,
		"action": act.Type,
		"slices": root.Len(),
	})
}

func (r *Root) reject(ctx context.Context, act action.Action, err error) *action.Future {
	future := action.NewFuture()
	r.settleRejected(ctx, future, act, err)
	return future
}

func (r *Root) settleRejected(ctx context.Context, future *action.Future, act action.Action, err error) {
	r.metrics.RecordRejected(1)

	observability.Emit(ctx, r.observer, EventDispatchError, observability.LevelError, "store.Root", map[string]any{
		"root":   r.name,
		"action": act.Type,
		"error":  err.Error(),
	})

	future.Settle(act, &DispatchError{Action: act, Err: err})
}

func (r *Root) isPrivate(name string) bool {
	return r.privatePrefix != "" && strings.HasPrefix(name, r.privatePrefix)
}
