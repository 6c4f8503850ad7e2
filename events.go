package batchloader

// Observer receives Batcher lifecycle events. Cache events fire on the
// calling goroutine and batch events on the flushing one, so implementations
// must be safe for concurrent use.
type Observer interface {
	On(eventData EventData)
}

// Event represents a Batcher event type.
type Event int

const (
	// EventCacheHit is emitted when a load is served by an existing cache entry.
	EventCacheHit Event = iota
	// EventCacheMiss is emitted when a load is queued and cached.
	EventCacheMiss
	// EventEvict is emitted when a cache entry is removed by a save or Clear.
	EventEvict
	// EventDispatch is emitted right before a batch function is called.
	EventDispatch
	// EventBatchFailed is emitted when a whole batch failed.
	EventBatchFailed
)

func (e Event) String() string {
	switch e {
	case EventCacheHit:
		return "cache_hit"
	case EventCacheMiss:
		return "cache_miss"
	case EventEvict:
		return "evict"
	case EventDispatch:
		return "dispatch"
	case EventBatchFailed:
		return "batch_failed"
	default:
		return "unknown"
	}
}

// EventData carries the details of an event. Key is set for cache events,
// BatchID and Size for batch events, Err for EventBatchFailed.
type EventData struct {
	Event   Event
	Kind    Kind
	Key     any
	BatchID string
	Size    int
	Err     error
}

func (b *Batcher[K, V]) emit(data EventData) {
	if b.observer == nil {
		return
	}
	b.observer.On(data)
}
