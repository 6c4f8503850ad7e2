package batchloader

import "context"

type contextKey[K comparable, V any] struct{}

// NewContext returns a child context that carries b. Batchers are looked up
// by their key and value types, so one context can carry one Batcher per
// type pair.
func NewContext[K comparable, V any](ctx context.Context, b *Batcher[K, V]) context.Context {
	return context.WithValue(ctx, contextKey[K, V]{}, b)
}

// FromContext retrieves the Batcher for K and V from ctx, or nil if none is
// present.
func FromContext[K comparable, V any](ctx context.Context) *Batcher[K, V] {
	b, _ := ctx.Value(contextKey[K, V]{}).(*Batcher[K, V])
	return b
}
