package batchloader

import (
	"context"
	"sync/atomic"
)

// Thunk is the pending result of a single load or save.
//
// A Thunk completes exactly once. Any number of goroutines may wait on it,
// and the Load Cache hands the same Thunk to every caller of a cached key,
// so all of them observe the same value or the same error.
type Thunk[V any] struct {
	done      chan struct{}
	completed atomic.Bool
	value     V
	err       error
}

func newThunk[V any]() *Thunk[V] {
	return &Thunk[V]{done: make(chan struct{})}
}

// resolvedThunk returns a Thunk that has already completed with v.
func resolvedThunk[V any](v V) *Thunk[V] {
	t := newThunk[V]()
	t.resolve(v)
	return t
}

// rejectedThunk returns a Thunk that has already failed with err.
func rejectedThunk[V any](err error) *Thunk[V] {
	t := newThunk[V]()
	t.reject(err)
	return t
}

// complete records the outcome and wakes every waiter. Only the first call
// has any effect; it reports whether this call was the one that completed t.
func (t *Thunk[V]) complete(v V, err error) bool {
	if !t.completed.CompareAndSwap(false, true) {
		return false
	}
	t.value, t.err = v, err
	close(t.done)
	return true
}

func (t *Thunk[V]) resolve(v V) bool {
	return t.complete(v, nil)
}

func (t *Thunk[V]) reject(err error) bool {
	var zero V
	return t.complete(zero, err)
}

// Done returns a channel that is closed once the Thunk has completed.
func (t *Thunk[V]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the Thunk completes or ctx is done.
//
// Giving up on ctx only stops this caller from waiting. The underlying
// operation stays queued and still completes for everyone else.
func (t *Thunk[V]) Wait(ctx context.Context) (V, error) {
	// Fast path: already completed, even if ctx is done too.
	select {
	case <-t.done:
		return t.value, t.err
	default:
	}

	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. The boolean is false while
// the Thunk is still pending.
func (t *Thunk[V]) Result() (Result[V], bool) {
	select {
	case <-t.done:
		return Result[V]{Value: t.value, Err: t.err}, true
	default:
		return Result[V]{}, false
	}
}
