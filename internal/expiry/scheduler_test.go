package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/pkg/clock"
)

// liveSlots stands in for the store: slot -> current expiry.
type liveSlots struct {
	expiry  map[int]int64
	expired []int
}

func (l *liveSlots) Expire(slot int, expiresAt int64) bool {
	exp, ok := l.expiry[slot]
	if !ok || exp != expiresAt {
		return false
	}
	delete(l.expiry, slot)
	l.expired = append(l.expired, slot)
	return true
}

type harness struct {
	clock *clock.Simulated
	sched *Scheduler
	slots *liveSlots
	fires int
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()

	h := &harness{clock: clock.NewSimulated(time.Time{}), slots: &liveSlots{expiry: map[int]int64{}}}
	sched, err := New(zap.NewNop().Sugar(), h.clock, capacity, func() {
		h.fires++
		h.sched.Sweep(h.slots)
	})
	require.NoError(t, err)
	h.sched = sched
	return h
}

func (h *harness) put(slot int, ttl time.Duration) int64 {
	exp := h.clock.Now().Add(ttl).UnixNano()
	h.slots.expiry[slot] = exp
	h.sched.Track(slot, exp)
	return exp
}

func TestNewValidation(t *testing.T) {
	_, err := New(zap.NewNop().Sugar(), nil, 4, func() {})
	assert.Error(t, err)
	_, err = New(zap.NewNop().Sugar(), clock.System{}, 4, nil)
	assert.Error(t, err)
	_, err = New(zap.NewNop().Sugar(), clock.System{}, 0, func() {})
	assert.Error(t, err)
}

func TestStateTransitions(t *testing.T) {
	h := newHarness(t, 4)
	assert.Equal(t, Idle, h.sched.State())

	h.put(0, 10*time.Second)
	assert.Equal(t, Armed, h.sched.State())
	deadline, ok := h.sched.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, h.clock.Now().Add(10*time.Second), deadline)

	delete(h.slots.expiry, 0)
	h.sched.Untrack(0)
	assert.Equal(t, Idle, h.sched.State())
	assert.Zero(t, h.clock.Pending())

	_, ok = h.sched.NextDeadline()
	assert.False(t, ok)
}

func TestTrackRearmsOnlyForEarlierMinimum(t *testing.T) {
	h := newHarness(t, 4)
	start := h.clock.Now()

	h.put(0, 10*time.Second)
	h.put(1, 20*time.Second)
	deadline, _ := h.sched.NextDeadline()
	assert.Equal(t, start.Add(10*time.Second), deadline)

	h.put(2, 5*time.Second)
	deadline, _ = h.sched.NextDeadline()
	assert.Equal(t, start.Add(5*time.Second), deadline)
	assert.Equal(t, 1, h.clock.Pending(), "exactly one timer is ever armed")
}

func TestSweepExpiresDueEntriesInOrder(t *testing.T) {
	h := newHarness(t, 8)
	h.put(3, 3*time.Second)
	h.put(1, 1*time.Second)
	h.put(2, 2*time.Second)
	h.put(7, time.Minute)

	h.clock.Advance(999 * time.Millisecond)
	assert.Empty(t, h.slots.expired)

	h.clock.Advance(2001 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, h.slots.expired)
	assert.Equal(t, 1, h.sched.Len())
	assert.Equal(t, Armed, h.sched.State())

	h.clock.Advance(time.Minute)
	assert.Equal(t, []int{1, 2, 3, 7}, h.slots.expired)
	assert.Equal(t, Idle, h.sched.State())
	assert.Zero(t, h.clock.Pending())
}

func TestSweepDropsStaleItems(t *testing.T) {
	h := newHarness(t, 4)
	h.put(0, time.Second)

	// The slot is refreshed behind the scheduler's back: the indexed item is now stale.
	h.slots.expiry[0] = h.clock.Now().Add(time.Hour).UnixNano()

	h.clock.Advance(2 * time.Second)
	assert.Empty(t, h.slots.expired)
	assert.Equal(t, 1, h.fires)
	assert.Zero(t, h.sched.Len())
	assert.Equal(t, Idle, h.sched.State())
}

func TestUpdateReplacesItem(t *testing.T) {
	h := newHarness(t, 4)
	h.put(0, time.Second)
	exp := h.put(0, time.Minute)

	assert.Equal(t, 1, h.sched.Len())
	got, ok := h.sched.Index().Lookup(0)
	require.True(t, ok)
	assert.Equal(t, exp, got)

	h.clock.Advance(30 * time.Second)
	assert.Empty(t, h.slots.expired)

	h.clock.Advance(31 * time.Second)
	assert.Equal(t, []int{0}, h.slots.expired)
}

func TestAlreadyDueUsesMinimumDelay(t *testing.T) {
	h := newHarness(t, 4)
	h.put(0, 0)

	deadline, ok := h.clock.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, h.clock.Now().Add(MinRearmDelay), deadline)

	h.clock.Advance(MinRearmDelay)
	assert.Equal(t, []int{0}, h.slots.expired)
}

func TestUntrackMovesDeadlineLater(t *testing.T) {
	h := newHarness(t, 4)
	start := h.clock.Now()
	h.put(0, time.Second)
	h.put(1, time.Minute)

	delete(h.slots.expiry, 0)
	h.sched.Untrack(0)

	deadline, ok := h.sched.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(time.Minute), deadline)

	h.clock.Advance(2 * time.Second)
	assert.Zero(t, h.fires, "timer must have been rearmed past the removed entry")
}

func TestCloseDisarms(t *testing.T) {
	h := newHarness(t, 4)
	h.put(0, time.Second)

	h.sched.Close()
	assert.Equal(t, Idle, h.sched.State())
	assert.Zero(t, h.clock.Pending())

	h.put(1, time.Second)
	assert.Zero(t, h.clock.Pending(), "closed scheduler must not arm")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "armed", Armed.String())
	assert.Equal(t, "firing", Firing.String())
}
