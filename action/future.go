package action

import (
	"context"
	"sync"
)

// Resolver produces a value asynchronously. Resolve blocks until the value is
// available or ctx is done.
type Resolver interface {
	Resolve(ctx context.Context) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context) (any, error) {
	return f(ctx)
}

// Future is a deferred Action that settles exactly once, either to an Action
// or to an error. The zero value is not usable; use NewFuture, Resolved, or
// Rejected.
type Future struct {
	done   chan struct{}
	once   sync.Once
	action Action
	err    error
}

// NewFuture returns an unsettled Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a Future already settled to a.
func Resolved(a Action) *Future {
	f := NewFuture()
	f.Settle(a, nil)
	return f
}

// Rejected returns a Future already settled to err.
func Rejected(err error) *Future {
	f := NewFuture()
	f.Settle(Action{}, err)
	return f
}

// Promise returns a Future resolved to the action {typ, data}. Passing it to
// the root dispatch entry point dispatches the action after resolution.
func Promise(typ string, data any) *Future {
	return Resolved(New(typ, data))
}

// Settle records the outcome. Only the first call has any effect.
func (f *Future) Settle(a Action, err error) {
	f.once.Do(func() {
		f.action = a
		f.err = err
		close(f.done)
	})
}

// Done is closed once the Future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (Action, error) {
	select {
	case <-f.done:
		return f.action, f.err
	case <-ctx.Done():
		return Action{}, ctx.Err()
	}
}

// Settled reports whether the Future has settled.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Resolve makes a Future usable as the source of a Deferred input.
func (f *Future) Resolve(ctx context.Context) (any, error) {
	a, err := f.Await(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}
