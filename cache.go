package batchloader

// loadCache maps cache keys to the Thunk of the load that filled them.
// It is guarded by the owning Batcher's mutex.
type loadCache[V any] struct {
	store map[any]*Thunk[V]
}

func newLoadCache[V any]() *loadCache[V] {
	return &loadCache[V]{store: make(map[any]*Thunk[V])}
}

func (c *loadCache[V]) get(key any) (*Thunk[V], bool) {
	t, ok := c.store[key]
	return t, ok
}

func (c *loadCache[V]) set(key any, t *Thunk[V]) {
	c.store[key] = t
}

func (c *loadCache[V]) delete(key any) bool {
	if _, ok := c.store[key]; !ok {
		return false
	}
	delete(c.store, key)
	return true
}

func (c *loadCache[V]) clear() {
	clear(c.store)
}

func (c *loadCache[V]) len() int {
	return len(c.store)
}
