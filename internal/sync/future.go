package sync

import (
	"context"
	"sync"
)

// Future is a write-once value that any number of goroutines can wait on. The first Set wins; later calls are
// ignored, so a resolved Future never changes.
type Future[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	value T
	set   bool
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// ResolvedFuture returns a Future that is already set to value.
func ResolvedFuture[T any](value T) *Future[T] {
	f := NewFuture[T]()
	f.Set(value)
	return f
}

// Set publishes value to all current and future waiters. Returns false if the Future was already set.
func (f *Future[T]) Set(value T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set {
		return false
	}
	f.value = value
	f.set = true
	close(f.done)
	return true
}

// IsSet reports whether the value has been published.
func (f *Future[T]) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Done returns a channel that is closed once the value is set.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the value is set, with no timeout.
func (f *Future[T]) Get() T {
	<-f.done
	return f.value
}

// Wait is like Get, but gives up when ctx is done. Giving up does not affect whoever is going to set the value.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
