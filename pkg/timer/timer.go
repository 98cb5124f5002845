// Package timer provides the delayed-callback capability the submission flow
// uses for its simulated latency and notice dismissal.
package timer

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs fn once after d has elapsed. Callbacks are not cancellable.
type Scheduler interface {
	ScheduleAfter(d time.Duration, fn func())
}

// ClockScheduler schedules on a clock.Clock. When a lock is supplied every
// callback runs while holding it, which keeps callbacks serialised with the
// caller's own event handlers.
type ClockScheduler struct {
	clock clock.Clock
	lock  sync.Locker
}

// NewClockScheduler returns a scheduler on clk (the wall clock when nil).
func NewClockScheduler(clk clock.Clock, lock sync.Locker) *ClockScheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &ClockScheduler{clock: clk, lock: lock}
}

// ScheduleAfter implements Scheduler.
func (s *ClockScheduler) ScheduleAfter(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	s.clock.AfterFunc(d, func() {
		if s.lock != nil {
			s.lock.Lock()
			defer s.lock.Unlock()
		}
		fn()
	})
}

// Manual is a deterministic scheduler driven by Advance. Callbacks run on the
// goroutine calling Advance, in due order; ties run in scheduling order.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []task
}

type task struct {
	at  time.Duration
	seq int
	fn  func()
}

// NewManual returns a Manual scheduler at offset zero.
func NewManual() *Manual {
	return &Manual{}
}

// ScheduleAfter implements Scheduler.
func (m *Manual) ScheduleAfter(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.pending = append(m.pending, task{at: m.now + d, seq: m.seq, fn: fn})
}

// Advance moves time forward by d, running every callback that becomes due,
// including ones scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		next, ok := m.popDue(target)
		if !ok {
			break
		}
		next.fn()
	}

	m.mu.Lock()
	if m.now < target {
		m.now = target
	}
	m.mu.Unlock()
}

// RunAll advances until nothing is pending and returns the elapsed offset.
func (m *Manual) RunAll() time.Duration {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			now := m.now
			m.mu.Unlock()
			return now
		}
		m.sortLocked()
		gap := m.pending[0].at - m.now
		m.mu.Unlock()
		m.Advance(gap)
	}
}

// Pending reports how many callbacks are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Now is the elapsed offset since the scheduler was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) popDue(target time.Duration) (task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return task{}, false
	}
	m.sortLocked()
	next := m.pending[0]
	if next.at > target {
		return task{}, false
	}
	m.pending = m.pending[1:]
	m.now = next.at
	return next, true
}

func (m *Manual) sortLocked() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at == m.pending[j].at {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at < m.pending[j].at
	})
}
