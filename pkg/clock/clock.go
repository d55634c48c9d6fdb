// Package clock abstracts wall time and one-shot timers so the expiry scheduler can run
// against the system clock in production and a manually advanced clock in tests.
package clock

import "time"

// Clock is the time source used by the table.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arms a one-shot timer that calls f once d has elapsed. f runs on a
	// goroutine owned by the clock, never on the caller's goroutine.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a one-shot countdown created by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer already fired
	// or was stopped.
	Stop() bool
}

// System is the Clock backed by package time.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
