package clock

import (
	"sync"
	"time"
)

// Simulated is a Clock that only moves when Advance is called. Timers fire synchronously
// inside Advance, in deadline order, with Now reporting each timer's deadline while its
// callback runs.
type Simulated struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*simTimer
}

type simTimer struct {
	clock    *Simulated
	deadline time.Time
	seq      uint64
	fn       func()
}

// NewSimulated returns a clock starting at start. A zero start uses a fixed epoch so tests
// are reproducible.
func NewSimulated(start time.Time) *Simulated {
	if start.IsZero() {
		start = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Simulated{now: start}
}

func (s *Simulated) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Simulated) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &simTimer{clock: s, deadline: s.now.Add(d), seq: s.seq, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline is reached,
// including timers armed by callbacks during the advance.
func (s *Simulated) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDueLocked(target)
		if next == nil {
			if target.After(s.now) {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		s.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of armed timers.
func (s *Simulated) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// NextDeadline returns the earliest armed deadline.
func (s *Simulated) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *simTimer
	for _, t := range s.timers {
		if best == nil || earlier(t, best) {
			best = t
		}
	}
	if best == nil {
		return time.Time{}, false
	}
	return best.deadline, true
}

func (s *Simulated) popDueLocked(target time.Time) *simTimer {
	pos := -1
	for i, t := range s.timers {
		if t.deadline.After(target) {
			continue
		}
		if pos == -1 || earlier(t, s.timers[pos]) {
			pos = i
		}
	}
	if pos == -1 {
		return nil
	}

	t := s.timers[pos]
	s.removeLocked(pos)
	return t
}

func (s *Simulated) removeLocked(pos int) {
	last := len(s.timers) - 1
	s.timers[pos] = s.timers[last]
	s.timers[last] = nil
	s.timers = s.timers[:last]
}

func earlier(a, b *simTimer) bool {
	if a.deadline.Equal(b.deadline) {
		return a.seq < b.seq
	}
	return a.deadline.Before(b.deadline)
}

func (t *simTimer) Stop() bool {
	s := t.clock
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, other := range s.timers {
		if other == t {
			s.removeLocked(i)
			return true
		}
	}
	return false
}
