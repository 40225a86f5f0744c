package llm

import "sync"

// Lazy builds a client on first use and hands out the same instance, or the
// same construction error, on every later call.
type Lazy[T any] struct {
	once    sync.Once
	factory func() (T, error)
	val     T
	err     error
}

// NewLazy wraps factory. It is not called until Get.
func NewLazy[T any](factory func() (T, error)) *Lazy[T] {
	return &Lazy[T]{factory: factory}
}

// Get returns the client, constructing it at most once.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.factory()
	})
	return l.val, l.err
}

// Ready returns a Lazy that is already initialized with v.
func Ready[T any](v T) *Lazy[T] {
	l := &Lazy[T]{val: v}
	l.once.Do(func() {})
	return l
}
