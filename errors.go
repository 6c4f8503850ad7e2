package batchloader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLoadFunc is returned by New when no load function is given.
	ErrNoLoadFunc = errors.New("batchloader: load function is required")

	// ErrNoSaveFunc fails every save on a Batcher built without a save
	// function.
	ErrNoSaveFunc = errors.New("batchloader: no save function configured")

	// ErrCacheKeyType is returned by New when the WithCacheKey function does
	// not take the Batcher's key type.
	ErrCacheKeyType = errors.New("batchloader: cache key function does not match key type")

	// ErrUnhashableCacheKey fails a call whose cache key cannot index the
	// Load Cache, such as a slice returned through an interface.
	ErrUnhashableCacheKey = errors.New("batchloader: cache key is not comparable")

	// ErrMaxBatchSize is returned by New for a negative WithMaxBatchSize.
	ErrMaxBatchSize = errors.New("batchloader: max batch size must not be negative")

	// ErrBatchLength is matched by every ValidationError.
	ErrBatchLength = errors.New("batchloader: batch function returned wrong number of results")
)

// ValidationError reports a batch function whose result does not line up
// with its input. Every operation of the offending batch fails with it.
type ValidationError struct {
	Kind Kind
	Want int
	Got  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("batchloader: %s function returned %d results for %d keys", e.Kind, e.Got, e.Want)
}

// Unwrap lets errors.Is(err, ErrBatchLength) match.
func (e *ValidationError) Unwrap() error {
	return ErrBatchLength
}

// BatchError is delivered to every operation of a batch whose batch function
// call failed as a whole, either by returning an error or by panicking.
type BatchError struct {
	Kind Kind
	Size int
	Err  error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batchloader: %s batch of %d failed: %v", e.Kind, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking batch function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("batch function panicked: %v", e.Value)
}

// Unwrap returns the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
