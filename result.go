package batchloader

// Kind is the kind of an operation. A batch only ever holds one kind.
type Kind int

const (
	// KindLoad is a read by key.
	KindLoad Kind = iota
	// KindSave is a write of a value under a key.
	KindSave
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSave:
		return "save"
	default:
		return "unknown"
	}
}

// Result is the outcome for one slot of a batch: either a value or an error.
//
// A batch function reports per-key failures by setting Err in that key's
// slot. Siblings in the same batch are unaffected.
type Result[V any] struct {
	Value V
	Err   error
}

// Ok returns a successful Result holding v.
func Ok[V any](v V) Result[V] {
	return Result[V]{Value: v}
}

// Err returns a failed Result holding err.
func Err[V any](err error) Result[V] {
	return Result[V]{Err: err}
}

// Get unpacks the result.
func (r Result[V]) Get() (V, error) {
	return r.Value, r.Err
}

// OK reports whether the result carries no error.
func (r Result[V]) OK() bool {
	return r.Err == nil
}

// Pair is one key/value write handed to a SaveFunc.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}
