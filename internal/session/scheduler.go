package session

import (
	"sync"
	"time"
)

// scheduler holds at most one pending timer. The controller schedules
// the next tick only after the previous tick's result has been fully
// applied, so ticks never overlap.
type scheduler struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newScheduler() *scheduler {
	return &scheduler{}
}

// schedule arms the timer. Any previously pending callback that has
// not fired yet is replaced.
func (s *scheduler) schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

// stop cancels the pending timer and refuses any further scheduling.
func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
