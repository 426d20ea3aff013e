package dispatcher

import "errors"

// Sentinel errors for the dispatcher. Register, Unregister, and WaitFor return
// them as values so that callbacks can inspect and handle them.
var (
	ErrUnknownID            = errors.New("cannot unregister unknown id")
	ErrUnregisteredCallback = errors.New("not a registered callback")
	ErrCircularDependency   = errors.New("circular dependency")
	ErrAlreadyDispatching   = errors.New("cannot dispatch while dispatching")
	ErrNotDispatching       = errors.New("waitFor must be invoked while dispatching")
)
