package batchloader

import (
	"context"
	"slices"

	"golang.org/x/sync/singleflight"
)

// Shared wraps fn so that identical key runs requested at the same time
// share a single call, even when they come from different Batchers. This
// suits the common setup of one Batcher per request in front of one backend.
//
// keyString renders a key for run identity; nil means fmt.Sprint. The call
// runs with the context of whichever caller arrived first, and every caller
// gets its own copy of the results.
func Shared[K comparable, V any](fn LoadFunc[K, V], keyString func(K) string) LoadFunc[K, V] {
	if keyString == nil {
		keyString = defaultKeyString[K]
	}

	var group singleflight.Group
	return func(ctx context.Context, keys []K) ([]Result[V], error) {
		v, err, _ := group.Do(runKey(keys, keyString), func() (any, error) {
			return fn(ctx, keys)
		})
		if err != nil {
			return nil, err
		}
		results, _ := v.([]Result[V])
		return slices.Clone(results), nil
	}
}
