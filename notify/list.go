// Package notify provides a copy-on-write listener list.
//
// A notification pass iterates the list as it was when the pass began.
// Listeners added during the pass are not called until the next pass, and
// listeners removed during the pass are still called if the pass captured
// them. Subscribe and unsubscribe never mutate a list that a pass is
// iterating: the first mutation after a pass clones the list.
package notify

import (
	"slices"
	"sync"
)

type entry[F any] struct {
	fn F
}

// List holds listeners of type F. The zero value is an empty list ready to use.
type List[F any] struct {
	mu      sync.Mutex
	current []*entry[F]
	next    []*entry[F]
	// shared is true while next aliases current.
	shared bool
}

// Subscribe appends fn and returns a function that removes it. Calling the
// returned function more than once has no further effect.
func (l *List[F]) Subscribe(fn F) (unsubscribe func()) {
	e := &entry[F]{fn: fn}

	l.mu.Lock()
	l.copyIfShared()
	l.next = append(l.next, e)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.copyIfShared()
			if i := slices.Index(l.next, e); i >= 0 {
				l.next = slices.Delete(l.next, i, i+1)
			}
		})
	}
}

// Notify calls visit for every listener in the snapshot taken on entry.
// The lock is not held while visit runs, so listeners may subscribe or
// unsubscribe freely.
func (l *List[F]) Notify(visit func(F)) {
	l.mu.Lock()
	l.current = l.next
	l.shared = true
	snapshot := l.current
	l.mu.Unlock()

	for _, e := range snapshot {
		visit(e.fn)
	}
}

// Len returns the number of subscribed listeners.
func (l *List[F]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.next)
}

func (l *List[F]) copyIfShared() {
	if l.shared {
		l.next = slices.Clone(l.current)
		l.shared = false
	}
}
