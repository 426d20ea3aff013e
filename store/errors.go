package store

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/flux/action"
)

// Sentinel errors for stores and the root dispatch entry point.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStoreExists      = errors.New("store already exists")
	ErrSelectorNotFound = errors.New("selector not found")
	ErrPanic            = errors.New("panic during dispatch")
)

// DispatchError is the rejection reason of a Future returned by the root
// dispatch entry point. Action is the zero Action when the input could not be
// normalized.
type DispatchError struct {
	Action action.Action
	Err    error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Action.Type == "" {
		return fmt.Sprintf("dispatch failed: %v", e.Err)
	}
	return fmt.Sprintf("dispatch %s failed: %v", e.Action.Type, e.Err)
}

// Unwrap enables errors.Is and errors.As on the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
