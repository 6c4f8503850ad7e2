// Package batchloader provides request coalescing and read-through caching
// in front of bulk load and save functions.
//
// Many goroutines asking for single keys is a common shape for data access,
// for example GraphQL resolvers or fan-out inside an HTTP handler. A Batcher
// collects the loads and saves issued within one short burst and hands them
// to a user-supplied LoadFunc or SaveFunc in as few calls as possible, then
// routes each result or error back to the caller that asked for it:
//
//	users, err := batchloader.New(fetchUsers, storeUsers,
//		batchloader.WithMaxBatchSize(100))
//
//	u, err := users.Load(ctx, 42)
//
// Operations are dispatched in the order they were issued, in runs of the
// same kind: a burst of three loads, two saves and a load makes three batch
// calls, in that order. WithMaxBatchSize splits longer runs.
//
// A batch function must return exactly one Result per input, in input order.
// A Result with Err set fails only its own key. A returned error, a panic, or
// a result of the wrong length fails every key of that batch with a
// *BatchError or *ValidationError; later batches are unaffected.
//
// Loads are cached by key (see WithCacheKey) until the key is saved or
// cleared. Concurrent loads of one key share a single Thunk and therefore a
// single fetch and a single outcome. Errors are cached like values; call
// Clear to retry a failed key.
//
// For one Batcher per request, attach it with [NewContext] and look it up
// with [FromContext]. Wrap the backend with [Shared] to let identical
// concurrent batches from different Batchers share one call.
package batchloader
