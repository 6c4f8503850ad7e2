package batchloader

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// LoadFunc loads a batch of keys. It must return exactly one Result per key,
// in key order. A missing record is a successful Result holding the zero
// value. A non-nil error fails every key of the batch.
type LoadFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]Result[V], error)

// SaveFunc saves a batch of key/value pairs, returning exactly one Result per
// pair, in pair order. A non-nil error fails every pair of the batch.
type SaveFunc[K comparable, V any] func(ctx context.Context, pairs []Pair[K, V]) ([]Result[V], error)

// Batcher coalesces loads and saves issued within one burst into as few
// LoadFunc and SaveFunc calls as possible, and memoizes loads by cache key.
//
// A Batcher is safe for concurrent use. It never runs two batch function
// calls at once. There is no Close: operations still queued when a Batcher
// is dropped never complete.
type Batcher[K comparable, V any] struct {
	loadFn       LoadFunc[K, V]
	saveFn       SaveFunc[K, V]
	cacheKey     func(K) any
	maxBatchSize int
	scheduler    Scheduler
	batchTimeout time.Duration
	ctx          context.Context
	observer     Observer
	logger       *slog.Logger

	// mu protects the following variables
	mu       sync.Mutex
	queue    []*operation[K, V]
	flushing bool
	cache    *loadCache[V] // nil when caching is disabled
}

// New creates a Batcher around load and, optionally, save. A nil save gives
// a load-only Batcher whose saves fail with ErrNoSaveFunc.
func New[K comparable, V any](load LoadFunc[K, V], save SaveFunc[K, V], opts ...Option) (*Batcher[K, V], error) {
	if load == nil {
		return nil, ErrNoLoadFunc
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxBatchSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrMaxBatchSize, o.maxBatchSize)
	}

	cacheKey := func(k K) any { return k }
	if o.cacheKey != nil {
		fn, ok := o.cacheKey.(func(K) any)
		if !ok {
			var zero K
			return nil, fmt.Errorf("%w: got %T for key type %T", ErrCacheKeyType, o.cacheKey, zero)
		}
		if fn != nil {
			cacheKey = fn
		}
	}

	if o.scheduler == nil {
		o.scheduler = NewTimerScheduler(DefaultWait)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	b := &Batcher[K, V]{
		loadFn:       load,
		saveFn:       save,
		cacheKey:     cacheKey,
		maxBatchSize: o.maxBatchSize,
		scheduler:    o.scheduler,
		batchTimeout: o.batchTimeout,
		ctx:          o.ctx,
		observer:     o.observer,
		logger:       o.logger,
	}
	if o.cache {
		b.cache = newLoadCache[V]()
	}
	return b, nil
}

// Load returns the value for key, batching the lookup with every other
// call made in the same burst.
func (b *Batcher[K, V]) Load(ctx context.Context, key K) (V, error) {
	return b.LoadThunk(key).Wait(ctx)
}

// LoadThunk queues a load of key without waiting for it.
//
// With caching enabled, every call for the same cache key returns the same
// Thunk until the key is saved or cleared, so only one load is ever in flight
// per key and all callers see its outcome, failure included.
func (b *Batcher[K, V]) LoadThunk(key K) *Thunk[V] {
	var zero V
	if b.cache == nil {
		return b.enqueue(newOperation(KindLoad, key, zero))
	}

	ck, err := b.cacheKeyOf(key)
	if err != nil {
		return rejectedThunk[V](err)
	}

	t, hit, schedule := b.loadCached(ck, key)
	if hit {
		b.emit(EventData{Event: EventCacheHit, Kind: KindLoad, Key: key})
		return t
	}
	b.emit(EventData{Event: EventCacheMiss, Kind: KindLoad, Key: key})
	if schedule {
		b.schedule()
	}
	return t
}

// loadCached returns the cached Thunk for ck, or queues a load of key and
// caches its Thunk.
func (b *Batcher[K, V]) loadCached(ck any, key K) (t *Thunk[V], hit, schedule bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.cache.get(ck); ok {
		return t, true, false
	}
	var zero V
	op := newOperation(KindLoad, key, zero)
	b.cache.set(ck, op.thunk)
	return op.thunk, false, b.pushLocked(op)
}

// cacheKeyOf derives the cache key of key. Keys that would panic as a map
// key are reported as ErrUnhashableCacheKey.
func (b *Batcher[K, V]) cacheKeyOf(key K) (any, error) {
	ck := b.cacheKey(key)
	if ck != nil && !reflect.ValueOf(ck).Comparable() {
		return nil, fmt.Errorf("%w: %T", ErrUnhashableCacheKey, ck)
	}
	return ck, nil
}

// LoadMany loads every key and waits for all of them. Results are in key
// order, and each slot succeeds or fails on its own.
func (b *Batcher[K, V]) LoadMany(ctx context.Context, keys []K) []Result[V] {
	thunks := make([]*Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = b.LoadThunk(key)
	}
	return waitAll(ctx, thunks)
}

// Save writes value under key, batching the write with other saves of the
// same burst. It evicts key from the Load Cache first, so loads issued after
// it fetch again instead of seeing the old value.
func (b *Batcher[K, V]) Save(ctx context.Context, key K, value V) (V, error) {
	return b.SaveThunk(key, value).Wait(ctx)
}

// SaveThunk queues a save without waiting for it.
func (b *Batcher[K, V]) SaveThunk(key K, value V) *Thunk[V] {
	if b.saveFn == nil {
		return rejectedThunk[V](ErrNoSaveFunc)
	}

	var ck any
	if b.cache != nil {
		var err error
		if ck, err = b.cacheKeyOf(key); err != nil {
			return rejectedThunk[V](err)
		}
	}
	op := newOperation(KindSave, key, value)
	evicted, schedule := b.evictAndPush(ck, op)

	if evicted {
		b.emit(EventData{Event: EventEvict, Kind: KindSave, Key: key})
	}
	if schedule {
		b.schedule()
	}
	return op.thunk
}

func (b *Batcher[K, V]) evictAndPush(ck any, op *operation[K, V]) (evicted, schedule bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted = b.cache != nil && b.cache.delete(ck)
	return evicted, b.pushLocked(op)
}

// SaveMany saves every pair and waits for all of them, in pair order.
func (b *Batcher[K, V]) SaveMany(ctx context.Context, pairs []Pair[K, V]) []Result[V] {
	thunks := make([]*Thunk[V], len(pairs))
	for i, p := range pairs {
		thunks[i] = b.SaveThunk(p.Key, p.Value)
	}
	return waitAll(ctx, thunks)
}

// Prime caches value for key as if it had been loaded. It does nothing and
// returns false when caching is disabled, key is already cached, or its
// cache key is not comparable.
func (b *Batcher[K, V]) Prime(key K, value V) bool {
	if b.cache == nil {
		return false
	}
	ck, err := b.cacheKeyOf(key)
	if err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cache.get(ck); ok {
		return false
	}
	b.cache.set(ck, resolvedThunk(value))
	return true
}

// Clear evicts key from the Load Cache. Callers already holding its Thunk
// are unaffected.
func (b *Batcher[K, V]) Clear(key K) {
	if b.cache == nil {
		return
	}
	ck, err := b.cacheKeyOf(key)
	if err != nil {
		return
	}

	b.mu.Lock()
	evicted := b.cache.delete(ck)
	b.mu.Unlock()

	if evicted {
		b.emit(EventData{Event: EventEvict, Kind: KindLoad, Key: key})
	}
}

// ClearAll empties the Load Cache.
func (b *Batcher[K, V]) ClearAll() {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	n := b.cache.len()
	b.cache.clear()
	b.mu.Unlock()

	b.logger.Debug("cache cleared", "entries", n)
}

// Pending returns the number of operations waiting to be dispatched.
func (b *Batcher[K, V]) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func waitAll[V any](ctx context.Context, thunks []*Thunk[V]) []Result[V] {
	results := make([]Result[V], len(thunks))
	for i, t := range thunks {
		v, err := t.Wait(ctx)
		results[i] = Result[V]{Value: v, Err: err}
	}
	return results
}
