package store

import (
	"fmt"
	"maps"
	"slices"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/dispatcher"
)

// WaitFunc makes the named stores' callbacks run before the caller continues.
// Reducers receive the dispatcher's WaitFor for the running cycle.
type WaitFunc func(ids ...dispatcher.ID) error

// Reducer maps the current slice state and an action to the next slice state.
// Returning the same value it was given means "no change"; see state.Same.
type Reducer func(state any, act action.Action, waitFor WaitFunc) (any, error)

// Handler handles one action type inside a Spec. It receives the action data
// rather than the whole action.
type Handler func(state any, data any, waitFor WaitFunc) (any, error)

// Spec builds a reducer from per-action-type handlers. Actions without a
// handler leave the state unchanged. InitialState, when set, provides the
// slice's initial value; otherwise the slice starts as nil.
type Spec struct {
	Handlers     map[string]Handler
	InitialState func() any
}

// Selector derives a value from the store's slice state.
type Selector func(state any, params ...any) any

// Definition is what a store is created from: either a Reducer or a *Spec.
type Definition interface {
	validate() error
	reducer() Reducer
	initialState() (any, error)
	actionTypes() []string
}

func noWait(...dispatcher.ID) error { return nil }

func (r Reducer) validate() error {
	if r == nil {
		return fmt.Errorf("%w: reducer is nil", ErrInvalidArgument)
	}
	return nil
}

func (r Reducer) reducer() Reducer {
	return r
}

// The initial state is the reducer's answer to a nil state and the zero
// action, with a WaitFunc that does nothing.
func (r Reducer) initialState() (any, error) {
	return r(nil, action.Action{}, noWait)
}

func (r Reducer) actionTypes() []string {
	return nil
}

func (s *Spec) validate() error {
	if s == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidArgument)
	}
	if len(s.Handlers) == 0 && s.InitialState == nil {
		return fmt.Errorf("%w: spec has neither handlers nor initial state", ErrInvalidArgument)
	}
	for typ, handler := range s.Handlers {
		if typ == "" {
			return fmt.Errorf("%w: spec handler with empty action type", ErrInvalidArgument)
		}
		if handler == nil {
			return fmt.Errorf("%w: spec handler %q is nil", ErrInvalidArgument, typ)
		}
	}
	return nil
}

func (s *Spec) reducer() Reducer {
	handlers := maps.Clone(s.Handlers)
	return func(state any, act action.Action, waitFor WaitFunc) (any, error) {
		handler, ok := handlers[act.Type]
		if !ok {
			return state, nil
		}
		return handler(state, act.Data, waitFor)
	}
}

func (s *Spec) initialState() (any, error) {
	if s.InitialState == nil {
		return nil, nil
	}
	return s.InitialState(), nil
}

func (s *Spec) actionTypes() []string {
	return slices.Sorted(maps.Keys(s.Handlers))
}
