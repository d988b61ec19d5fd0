package service

import (
	"sync"
	"time"
)

// Scheduler runs cancellable deferred tasks (booking reminders, post-call
// auto-deletes). Keys are caller-chosen so a later state change can cancel a
// timer before it acts on stale data.
type Scheduler interface {
	Schedule(key string, delay time.Duration, task func())
	Cancel(key string)
	Stop()
}

type timerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewScheduler() Scheduler {
	return &timerScheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule replaces any pending task under the same key.
func (s *timerScheduler) Schedule(key string, delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}

	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()

		task()
	})
}

func (s *timerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Stop cancels every pending task.
func (s *timerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
