package batchloader

import (
	"context"
	"log/slog"
	"time"
)

// DefaultWait is how long the default scheduler lets a burst of calls
// accumulate before flushing.
const DefaultWait = time.Millisecond

type options struct {
	cache        bool
	cacheKey     any
	maxBatchSize int
	scheduler    Scheduler
	batchTimeout time.Duration
	ctx          context.Context
	observer     Observer
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		cache: true,
		ctx:   context.Background(),
	}
}

// Option configures a Batcher created by New.
type Option func(*options)

// WithCache turns the read-through Load Cache on or off. It is on by default.
func WithCache(enabled bool) Option {
	return func(o *options) {
		o.cache = enabled
	}
}

// WithCacheKey sets the function deriving a cache key from a key. Keys with
// equal cache keys share one cache entry. The default is the key itself.
//
// K must be the Batcher's key type, otherwise New fails with ErrCacheKeyType.
// When C is an interface type, a cache key whose dynamic value is not
// comparable fails that call with ErrUnhashableCacheKey.
func WithCacheKey[K any, C comparable](fn func(K) C) Option {
	return func(o *options) {
		o.cacheKey = func(k K) any { return fn(k) }
	}
}

// WithMaxBatchSize caps how many operations go into one batch function call.
// Zero, the default, means no cap.
func WithMaxBatchSize(n int) Option {
	return func(o *options) {
		o.maxBatchSize = n
	}
}

// WithScheduler sets how a flush is deferred after the first call of a burst.
// The default is NewTimerScheduler(DefaultWait).
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithBatchTimeout bounds every batch function call with a deadline on the
// context it receives.
func WithBatchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.batchTimeout = d
	}
}

// WithContext sets the base context handed to batch functions.
// Batches merge calls from many callers, so no single caller's context is used.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithObserver attaches an Observer that receives cache and batch events
// for the lifetime of the Batcher.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger used for debug output about flushes.
// Nothing is logged by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
