package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedFiresInDeadlineOrder(t *testing.T) {
	clk := NewSimulated(time.Time{})
	start := clk.Now()

	var fired []string
	var firedAt []time.Duration
	record := func(name string) func() {
		return func() {
			fired = append(fired, name)
			firedAt = append(firedAt, clk.Now().Sub(start))
		}
	}

	clk.AfterFunc(3*time.Second, record("c"))
	clk.AfterFunc(1*time.Second, record("a"))
	clk.AfterFunc(2*time.Second, record("b"))
	require.Equal(t, 3, clk.Pending())

	clk.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, firedAt)
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, 12*time.Second, clk.Now().Sub(start))
}

func TestSimulatedStop(t *testing.T) {
	clk := NewSimulated(time.Time{})
	called := false
	timer := clk.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clk.Advance(time.Minute)
	assert.False(t, called)
}

func TestSimulatedTimerArmedByCallback(t *testing.T) {
	clk := NewSimulated(time.Time{})
	count := 0

	var rearm func()
	rearm = func() {
		count++
		if count < 3 {
			clk.AfterFunc(time.Second, rearm)
		}
	}
	clk.AfterFunc(time.Second, rearm)

	clk.Advance(5 * time.Second)
	assert.Equal(t, 3, count)
	assert.Zero(t, clk.Pending())
}

func TestSimulatedNextDeadline(t *testing.T) {
	clk := NewSimulated(time.Time{})
	_, ok := clk.NextDeadline()
	assert.False(t, ok)

	clk.AfterFunc(5*time.Second, func() {})
	clk.AfterFunc(2*time.Second, func() {})

	deadline, ok := clk.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, clk.Now().Add(2*time.Second), deadline)
}
