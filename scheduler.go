package batchloader

import (
	"runtime"
	"sync"
	"time"
)

// Scheduler defers a flush until the current burst of calls is over.
//
// A Batcher calls Schedule once when its queue goes from empty to non-empty,
// and never again until that flush has drained the queue. Schedule must not
// run fn before returning.
type Scheduler interface {
	Schedule(fn func())
}

// TimerScheduler runs each flush on its own goroutine after a fixed wait.
type TimerScheduler struct {
	wait time.Duration
}

// NewTimerScheduler returns a TimerScheduler that waits for wait before
// flushing. With a zero wait the flush goroutine only yields once first.
func NewTimerScheduler(wait time.Duration) *TimerScheduler {
	return &TimerScheduler{wait: wait}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(fn func()) {
	if s.wait <= 0 {
		go func() {
			runtime.Gosched()
			fn()
		}()
		return
	}
	time.AfterFunc(s.wait, fn)
}

// ManualScheduler queues flushes until Tick is called. It gives tests and
// single-goroutine event loops full control over when batches run.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Pending returns the number of queued continuations.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Tick runs queued continuations on the calling goroutine, in order, until
// none are left, including any scheduled while it runs. It returns how many ran.
func (s *ManualScheduler) Tick() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.mu.Unlock()
			return ran
		}
		fn := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		fn()
		ran++
	}
}
