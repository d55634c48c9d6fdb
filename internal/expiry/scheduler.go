// Package expiry schedules automatic expiry of table entries from a minimum heap of
// absolute expiry times and one rearming one-shot timer.
package expiry

import (
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/internal/index"
	"github.com/iamBelugaa/mactable/pkg/clock"
	"github.com/iamBelugaa/mactable/pkg/errors"
)

// MinRearmDelay is the shortest countdown ever armed, used when the earliest expiry is
// already due.
const MinRearmDelay = time.Millisecond

// New creates an idle scheduler whose index holds up to capacity items. onFire is called
// from the clock's goroutine whenever the timer elapses; it is expected to take the table
// lock and call Sweep.
func New(log *zap.SugaredLogger, clk clock.Clock, capacity int, onFire func()) (*Scheduler, error) {
	if clk == nil {
		return nil, errors.NewRequiredFieldError("clock")
	}
	if onFire == nil {
		return nil, errors.NewRequiredFieldError("onFire")
	}

	idx, err := index.New(capacity)
	if err != nil {
		return nil, err
	}

	log.Infow("Initializing expiry scheduler", "capacity", capacity, "minRearmDelay", MinRearmDelay)
	return &Scheduler{log: log, clock: clk, index: idx, onFire: onFire, state: Idle}, nil
}

// Track indexes slot at expiresAt, replacing any stale item for the slot, and pulls the
// timer forward if the new minimum is earlier than the armed deadline.
func (s *Scheduler) Track(slot int, expiresAt int64) {
	s.index.Remove(slot)
	if err := s.index.Push(index.Item{Slot: slot, ExpiresAt: expiresAt}); err != nil {
		s.log.Errorw("Failed to index slot expiry", "slot", slot, "error", err)
		return
	}

	top, _ := s.index.Peek()
	if s.state != Armed || top.ExpiresAt < s.deadline {
		s.arm(top.ExpiresAt)
	}
}

// Untrack drops slot from the index. The timer is disarmed when the index empties and
// rearmed when the minimum moved.
func (s *Scheduler) Untrack(slot int) {
	s.index.Remove(slot)
	s.resync()
}

// Sweep expires every indexed slot whose time has come. Each popped item is re-validated
// against slots; items for slots that were deleted or refreshed since they were indexed
// are dropped silently. It returns the number of entries expired.
func (s *Scheduler) Sweep(slots Slots) int {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = Firing

	now := s.clock.Now().UnixNano()
	expired, stale := 0, 0

	for {
		top, ok := s.index.Peek()
		if !ok || top.ExpiresAt > now {
			break
		}
		s.index.Pop()

		if slots.Expire(top.Slot, top.ExpiresAt) {
			expired++
		} else {
			stale++
		}
	}

	if expired > 0 || stale > 0 {
		s.log.Debugw("Expiry sweep completed", "expired", expired, "stale", stale, "remaining", s.index.Len())
	}

	s.state = Idle
	s.resync()
	return expired
}

// Index exposes the expiry index for eviction policies. Callers that pop items must push
// back every item they do not evict.
func (s *Scheduler) Index() *index.Index {
	return s.index
}

// Len returns the number of indexed slots.
func (s *Scheduler) Len() int {
	return s.index.Len()
}

// State returns the timer state.
func (s *Scheduler) State() State {
	return s.state
}

// NextDeadline returns the expiry the timer is armed for.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	if s.state != Armed {
		return time.Time{}, false
	}
	return time.Unix(0, s.deadline).UTC(), true
}

// Close disarms the timer. A closed scheduler never arms again.
func (s *Scheduler) Close() {
	s.disarm()
	s.closed = true
	s.log.Infow("Expiry scheduler closed", "indexed", s.index.Len())
}

// resync arms the timer for the current minimum, or disarms it if nothing is indexed.
func (s *Scheduler) resync() {
	top, ok := s.index.Peek()
	if !ok {
		s.disarm()
		return
	}
	if s.state != Armed || top.ExpiresAt != s.deadline {
		s.arm(top.ExpiresAt)
	}
}

func (s *Scheduler) arm(deadline int64) {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	delay := time.Duration(deadline - s.clock.Now().UnixNano())
	if delay < MinRearmDelay {
		delay = MinRearmDelay
	}

	s.timer = s.clock.AfterFunc(delay, s.onFire)
	s.deadline = deadline
	s.state = Armed
	s.log.Debugw("Expiry timer armed", "delay", delay, "indexed", s.index.Len())
}

func (s *Scheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.state == Armed {
		s.log.Debugw("Expiry timer disarmed")
	}
	s.deadline = 0
	s.state = Idle
}
