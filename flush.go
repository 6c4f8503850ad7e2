package batchloader

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// operation is one queued load or save. Its thunk is completed exactly once,
// by the flush that dispatches it.
type operation[K comparable, V any] struct {
	kind  Kind
	key   K
	value V
	thunk *Thunk[V]
}

func newOperation[K comparable, V any](kind Kind, key K, value V) *operation[K, V] {
	return &operation[K, V]{
		kind:  kind,
		key:   key,
		value: value,
		thunk: newThunk[V](),
	}
}

func (b *Batcher[K, V]) enqueue(op *operation[K, V]) *Thunk[V] {
	b.mu.Lock()
	schedule := b.pushLocked(op)
	b.mu.Unlock()

	if schedule {
		b.schedule()
	}
	return op.thunk
}

// pushLocked appends op to the queue and reports whether the caller must
// schedule a flush. That is only the case when the queue was empty and no
// flush is pending or running; a running flush picks op up by itself.
func (b *Batcher[K, V]) pushLocked(op *operation[K, V]) bool {
	b.queue = append(b.queue, op)
	if len(b.queue) == 1 && !b.flushing {
		b.flushing = true
		return true
	}
	return false
}

func (b *Batcher[K, V]) schedule() {
	b.logger.Debug("flush scheduled")
	b.scheduler.Schedule(b.flush)
}

// flush drains the queue one run at a time. It is the only place the
// flushing flag is cleared, and only once the queue is seen empty under the
// lock, so operations queued during a dispatch are never stranded.
func (b *Batcher[K, V]) flush() {
	for {
		b.mu.Lock()
		run := b.nextRunLocked()
		if run == nil {
			b.flushing = false
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()

		b.dispatch(run)
	}
}

// nextRunLocked removes and returns the longest same-kind prefix of the
// queue, capped at maxBatchSize. It returns nil for an empty queue.
func (b *Batcher[K, V]) nextRunLocked() []*operation[K, V] {
	if len(b.queue) == 0 {
		b.queue = nil
		return nil
	}

	limit := len(b.queue)
	if b.maxBatchSize > 0 && b.maxBatchSize < limit {
		limit = b.maxBatchSize
	}

	kind := b.queue[0].kind
	n := 1
	for n < limit && b.queue[n].kind == kind {
		n++
	}

	run := b.queue[:n:n]
	b.queue = b.queue[n:]
	return run
}

// dispatch calls the batch function for run and completes every operation
// in it: all with the same error if the call failed or returned the wrong
// number of results, otherwise each with its own slot.
func (b *Batcher[K, V]) dispatch(run []*operation[K, V]) {
	kind := run[0].kind
	batchID := uuid.NewString()
	start := time.Now()

	b.logger.Debug("dispatching run", "batch_id", batchID, "kind", kind.String(), "size", len(run))
	b.emit(EventData{Event: EventDispatch, Kind: kind, BatchID: batchID, Size: len(run)})

	results, err := b.call(kind, run)
	if err == nil && len(results) != len(run) {
		err = &ValidationError{Kind: kind, Want: len(run), Got: len(results)}
	}
	if err != nil {
		for _, op := range run {
			op.thunk.reject(err)
		}
		b.logger.Debug("run failed", "batch_id", batchID, "kind", kind.String(), "size", len(run),
			"error", err, "duration", time.Since(start))
		b.emit(EventData{Event: EventBatchFailed, Kind: kind, BatchID: batchID, Size: len(run), Err: err})
		return
	}

	var failed int
	for i, op := range run {
		if r := results[i]; r.Err != nil {
			op.thunk.reject(r.Err)
			failed++
		} else {
			op.thunk.resolve(r.Value)
		}
	}

	b.logger.Debug("run complete", "batch_id", batchID, "kind", kind.String(), "size", len(run),
		"failed", failed, "duration", time.Since(start))
}

// call invokes the batch function for kind. A returned error or a panic
// comes back as a *BatchError.
func (b *Batcher[K, V]) call(kind Kind, run []*operation[K, V]) (results []Result[V], err error) {
	ctx := b.ctx
	if b.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.batchTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &BatchError{Kind: kind, Size: len(run), Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()

	switch kind {
	case KindSave:
		pairs := make([]Pair[K, V], len(run))
		for i, op := range run {
			pairs[i] = Pair[K, V]{Key: op.key, Value: op.value}
		}
		results, err = b.saveFn(ctx, pairs)
	default:
		keys := make([]K, len(run))
		for i, op := range run {
			keys[i] = op.key
		}
		results, err = b.loadFn(ctx, keys)
	}

	if err != nil {
		return nil, &BatchError{Kind: kind, Size: len(run), Err: err}
	}
	return results, nil
}
