package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/dispatcher"
	"github.com/tailored-agentic-units/flux/notify"
	"github.com/tailored-agentic-units/flux/observability"
	"github.com/tailored-agentic-units/flux/state"
)

// Listener is notified with the store's new slice value and the action that
// produced it.
type Listener func(slice any, act action.Action)

// ActionFunc dispatches a fixed action type with the given data.
type ActionFunc func(ctx context.Context, data any) *action.Future

// StoreOption configures a store at creation.
type StoreOption func(*storeOptions) error

type storeOptions struct {
	selectors map[string]Selector
}

// WithSelectors binds selectors to the store's slice. See Store.Select.
func WithSelectors(selectors map[string]Selector) StoreOption {
	return func(o *storeOptions) error {
		for name, sel := range selectors {
			if sel == nil {
				return fmt.Errorf("%w: selector %q is nil", ErrInvalidArgument, name)
			}
		}
		o.selectors = maps.Clone(selectors)
		return nil
	}
}

// Store owns one named slice of the root state. It reduces every dispatched
// action into that slice and notifies its own listeners when the slice
// changes.
type Store struct {
	name  string
	token dispatcher.ID
	root  *Root

	mu      sync.RWMutex
	reducer Reducer

	listeners   notify.List[Listener]
	selectors   map[string]Selector
	actionTypes []string
}

// CreateStore initializes the slice name from def, notifies root listeners
// once, and registers the store's callback with the dispatcher.
//
// Stores whose name starts with the configured private prefix are created
// normally but are not returned by GetStores or Store.
func (r *Root) CreateStore(name string, def Definition, opts ...StoreOption) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: store name is empty", ErrInvalidArgument)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", ErrInvalidArgument)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}

	var o storeOptions
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	r.storesMu.Lock()
	if r.names[name] {
		r.storesMu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrStoreExists, name)
	}
	r.names[name] = true
	r.storesMu.Unlock()

	initial, err := def.initialState()
	if err != nil {
		r.release(name)
		return nil, fmt.Errorf("failed to build initial state for %s: %w", name, err)
	}

	s := &Store{
		name:        name,
		root:        r,
		reducer:     def.reducer(),
		selectors:   o.selectors,
		actionTypes: def.actionTypes(),
	}

	ctx := context.Background()
	rs := r.state.UpdateSlice(ctx, name, initial)
	r.notifyRoot(ctx, rs, action.Action{})

	s.token = r.dispatcher.Register(s.handle)

	if !r.isPrivate(name) {
		r.storesMu.Lock()
		r.stores[name] = s
		r.storesMu.Unlock()
	}
	r.metrics.RecordStore(1)

	observability.Emit(ctx, r.observer, EventStoreCreate, observability.LevelInfo, "store.Root", map[string]any{
		"root":    r.name,
		"store":   name,
		"token":   string(s.token),
		"private": r.isPrivate(name),
	})

	return s, nil
}

func (r *Root) release(name string) {
	r.storesMu.Lock()
	delete(r.names, name)
	r.storesMu.Unlock()
}

// Name returns the slice name.
func (s *Store) Name() string {
	return s.name
}

// DispatchToken returns the dispatcher id of this store's callback. Reducers
// of other stores pass it to their WaitFunc to run this store first.
func (s *Store) DispatchToken() dispatcher.ID {
	return s.token
}

// Dispatch delegates to the root dispatch entry point.
func (s *Store) Dispatch(ctx context.Context, act any, data any) *action.Future {
	return s.root.Dispatch(ctx, act, data)
}

// Subscribe registers a listener for changes to this store's slice.
func (s *Store) Subscribe(listener Listener) (func(), error) {
	if listener == nil {
		return nil, fmt.Errorf("%w: listener is nil", ErrInvalidArgument)
	}
	return s.listeners.Subscribe(listener), nil
}

// GetState returns the current slice value.
func (s *Store) GetState() any {
	v, _ := s.root.state.Get().Get(s.name)
	return v
}

// SetState overwrites the slice, bypassing the reducer. No listener is
// notified.
func (s *Store) SetState(value any) {
	s.root.state.UpdateSlice(context.Background(), s.name, value)
}

// GetReducer returns the reducer currently in use.
func (s *Store) GetReducer() Reducer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reducer
}

// ReplaceReducer swaps the reducer. The current slice is not recomputed.
func (s *Store) ReplaceReducer(reducer Reducer) error {
	if reducer == nil {
		return fmt.Errorf("%w: reducer is nil", ErrInvalidArgument)
	}
	s.mu.Lock()
	s.reducer = reducer
	s.mu.Unlock()
	return nil
}

// Action returns a dispatcher bound to one of the action types the store was
// created with. Only stores created from a *Spec have actions.
func (s *Store) Action(typ string) (ActionFunc, bool) {
	if !slices.Contains(s.actionTypes, typ) {
		return nil, false
	}
	return func(ctx context.Context, data any) *action.Future {
		return s.root.Dispatch(ctx, action.New(typ, data), nil)
	}, true
}

// ActionNames returns the bound action types, sorted.
func (s *Store) ActionNames() []string {
	return slices.Clone(s.actionTypes)
}

// Select runs the named selector against the current slice value.
func (s *Store) Select(name string, params ...any) (any, error) {
	sel, ok := s.selectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSelectorNotFound, name)
	}
	return sel(s.GetState(), params...), nil
}

// Selectors returns the bound selector names, sorted.
func (s *Store) Selectors() []string {
	return slices.Sorted(maps.Keys(s.selectors))
}

func (s *Store) handle(ctx context.Context, act action.Action) error {
	current := s.GetState()

	next, err := s.GetReducer()(current, act, s.root.dispatcher.WaitFor)
	if err != nil {
		return fmt.Errorf("store %s: %w", s.name, err)
	}
	if state.Same(current, next) {
		return nil
	}

	s.root.state.UpdateSlice(ctx, s.name, next)

	s.listeners.Notify(func(listener Listener) {
		listener(next, act)
	})
	s.root.metrics.RecordStoreNotification(1)

	observability.Emit(ctx, s.root.observer, EventStoreNotify, observability.LevelVerbose, "store.Store", map[string]any{
		"store":     s.name,
		"action":    act.Type,
		"listeners": s.listeners.Len(),
	})

	return nil
}
