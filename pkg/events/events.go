// Package events defines the observer notified of every table state change.
//
// Sinks are invoked synchronously, in-line with the mutation that produced the event and
// while the table is locked. A sink must return promptly and must never call back into
// the table that notified it.
package events

import (
	"io"
	"time"

	"go.uber.org/multierr"

	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

// NoSlot is the slot index carried by events that are not tied to a slot (Full).
const NoSlot = -1

// Event describes a single state change.
type Event struct {
	Slot    int
	Address macaddr.Address
	Outcome Outcome
	At      time.Time
}

// Sink receives table events.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) {
	f(ev)
}

// Nop discards every event.
var Nop Sink = SinkFunc(func(Event) {})

type multi []Sink

// Multi fans each event out to every non-nil sink, in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) OnEvent(ev Event) {
	for _, s := range m {
		s.OnEvent(ev)
	}
}

// Close closes every sink that implements io.Closer.
func (m multi) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, CloseSink(s))
	}
	return err
}

// CloseSink closes s if it implements io.Closer.
func CloseSink(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Recorder keeps every event it receives. It is meant for tests and diagnostics.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnEvent(ev Event) {
	r.Events = append(r.Events, ev)
}

// Outcomes returns the outcome of every recorded event.
func (r *Recorder) Outcomes() []Outcome {
	out := make([]Outcome, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Outcome
	}
	return out
}

// Count returns how many recorded events had the given outcome.
func (r *Recorder) Count(o Outcome) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Outcome == o {
			n++
		}
	}
	return n
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
