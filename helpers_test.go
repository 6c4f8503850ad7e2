package batchloader_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/probablyarth/batchloader-go"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind batchloader.Kind
	keys []int
}

// fakeStore is an in-memory backend recording every batch call it serves.
type fakeStore struct {
	mu    sync.Mutex
	data  map[int]string
	fail  map[int]error
	calls []call

	inFlight atomic.Int32
	overlap  atomic.Bool
}

func newFakeStore(data map[int]string) *fakeStore {
	if data == nil {
		data = make(map[int]string)
	}
	return &fakeStore{data: data, fail: make(map[int]error)}
}

func (s *fakeStore) load(_ context.Context, keys []int) ([]batchloader.Result[*string], error) {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{kind: batchloader.KindLoad, keys: slices.Clone(keys)})

	results := make([]batchloader.Result[*string], len(keys))
	for i, k := range keys {
		if err, ok := s.fail[k]; ok {
			results[i] = batchloader.Err[*string](err)
			continue
		}
		if v, ok := s.data[k]; ok {
			results[i] = batchloader.Ok(&v)
		}
	}
	return results, nil
}

func (s *fakeStore) save(_ context.Context, pairs []batchloader.Pair[int, *string]) ([]batchloader.Result[*string], error) {
	s.enter()
	defer s.leave()

	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]int, len(pairs))
	results := make([]batchloader.Result[*string], len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
		if p.Value == nil {
			delete(s.data, p.Key)
		} else {
			s.data[p.Key] = *p.Value
		}
		results[i] = batchloader.Ok(p.Value)
	}
	s.calls = append(s.calls, call{kind: batchloader.KindSave, keys: keys})
	return results, nil
}

func (s *fakeStore) enter() {
	if s.inFlight.Add(1) > 1 {
		s.overlap.Store(true)
	}
}

func (s *fakeStore) leave() {
	s.inFlight.Add(-1)
}

func (s *fakeStore) runs() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *fakeStore) sizes() []int {
	var sizes []int
	for _, c := range s.runs() {
		sizes = append(sizes, len(c.keys))
	}
	return sizes
}

func (s *fakeStore) kinds() []batchloader.Kind {
	var kinds []batchloader.Kind
	for _, c := range s.runs() {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

func newManual(t *testing.T, s *fakeStore, opts ...batchloader.Option) (*batchloader.Batcher[int, *string], *batchloader.ManualScheduler) {
	t.Helper()
	sched := batchloader.NewManualScheduler()
	opts = append([]batchloader.Option{batchloader.WithScheduler(sched)}, opts...)
	b, err := batchloader.New[int, *string](s.load, s.save, opts...)
	require.NoError(t, err)
	return b, sched
}

// settled returns the outcome of a thunk that must already have completed.
func settled[V any](t *testing.T, th *batchloader.Thunk[V]) (V, error) {
	t.Helper()
	r, ok := th.Result()
	require.True(t, ok, "thunk still pending")
	return r.Get()
}

func ptr(s string) *string {
	return &s
}

type recorder struct {
	mu     sync.Mutex
	events []batchloader.EventData
}

func (r *recorder) On(e batchloader.EventData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []batchloader.EventData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *recorder) kinds() []batchloader.Event {
	var kinds []batchloader.Event
	for _, e := range r.all() {
		kinds = append(kinds, e.Event)
	}
	return kinds
}
