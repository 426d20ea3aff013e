// Package action defines the payload that flows through a dispatch cycle and
// the input shapes accepted by the root dispatch entry point.
//
// Callers submit one of three input variants:
//
//	action.Action{Type: "increment", Data: 2}          // structured, used as-is
//	action.Shorthand{Type: "increment", Data: 2}       // type + data, normalized to Action
//	action.Deferred{Source: future}                    // awaited, then dispatched recursively
//
// Normalize maps loose values (a bare string, an Action, a Resolver) onto
// these variants and rejects everything else with ErrInvalidAction.
package action

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is returned when a value cannot be interpreted as an action.
var ErrInvalidAction = errors.New("invalid action")

// Action is the opaque payload passed unmodified to every callback during one
// dispatch cycle. ID is a correlation identifier assigned by the root dispatch
// entry point; it carries no semantics.
type Action struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// New builds an Action of the given type carrying data.
func New(typ string, data any) Action {
	return Action{Type: typ, Data: data}
}

// IsZero reports whether a is the zero Action. Stores notify root listeners
// with the zero Action when a slice is first installed.
func (a Action) IsZero() bool {
	return a.ID == "" && a.Type == "" && a.Data == nil
}

func (a Action) String() string {
	return fmt.Sprintf("Action{Type: %s, ID: %s}", a.Type, a.ID)
}

// Input is the closed set of values accepted by the root dispatch entry point.
// The implementations are Action, Shorthand, and Deferred.
type Input interface {
	input()
}

func (Action) input() {}

// Shorthand is a type name plus data, normalized to an Action before dispatch.
type Shorthand struct {
	Type string
	Data any
}

func (Shorthand) input() {}

// Action converts the shorthand into a structured Action.
func (s Shorthand) Action() Action {
	return Action{Type: s.Type, Data: s.Data}
}

// Deferred is a value that must be resolved before it can be dispatched. The
// resolved value is normalized and dispatched recursively.
type Deferred struct {
	Source Resolver
}

func (Deferred) input() {}

// Normalize interprets v as an Input. data is only used when v is a bare
// string, mirroring dispatch("type", data).
//
// Accepted shapes: Input values, *Action, string, and Resolver (including
// *Future). Anything else, a nil pointer, or an empty type yields
// ErrInvalidAction.
func Normalize(v any, data any) (Input, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidAction)
	case Action:
		if val.Type == "" {
			return nil, fmt.Errorf("%w: empty type", ErrInvalidAction)
		}
		return val, nil
	case *Action:
		if val == nil {
			return nil, fmt.Errorf("%w: nil action", ErrInvalidAction)
		}
		return Normalize(*val, data)
	case Shorthand:
		if val.Type == "" {
			return nil, fmt.Errorf("%w: empty type", ErrInvalidAction)
		}
		return val, nil
	case Deferred:
		if val.Source == nil {
			return nil, fmt.Errorf("%w: deferred without source", ErrInvalidAction)
		}
		return val, nil
	case string:
		if val == "" {
			return nil, fmt.Errorf("%w: empty type", ErrInvalidAction)
		}
		return Shorthand{Type: val, Data: data}, nil
	case Resolver:
		return Deferred{Source: val}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidAction, v)
	}
}
