// Package options provides data structures and functions for configuring an address table.
package options

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/pkg/checksum"
	"github.com/iamBelugaa/mactable/pkg/clock"
	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/events"
)

// Defines the configuration parameters of an address table.
type Options struct {
	// Number of slots. Fixed for the lifetime of the table.
	//
	//  - Default: 64
	//  - Maximum: 1048576
	Capacity int `json:"capacity"`

	// Time to live applied to inserts that do not override it.
	//
	// Default: 30s
	DefaultTTL time.Duration `json:"defaultTTL"`

	// Name of the hash used to pick a probe start slot: "fnv1a" or "crc32".
	//
	// Default: "fnv1a"
	Hash string `json:"hash"`

	// Time source and timer factory for expiry. Tests inject clock.Simulated.
	Clock clock.Clock `json:"-"`

	// Observer notified of every state change. The table takes ownership and closes it
	// on Close when it implements io.Closer.
	Sink events.Sink `json:"-"`

	// Logger used by every component. When nil a production logger is built.
	Logger *zap.SugaredLogger `json:"-"`
}

type OptionFunc func(*Options)

// Sets the number of slots. Validate rejects values outside [1, MaxCapacity].
func WithCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		o.Capacity = capacity
	}
}

// Sets the default time to live. Validate rejects non-positive values.
func WithDefaultTTL(ttl time.Duration) OptionFunc {
	return func(o *Options) {
		o.DefaultTTL = ttl
	}
}

// Selects the probe hash by name.
func WithHash(name string) OptionFunc {
	return func(o *Options) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			o.Hash = name
		}
	}
}

// Sets the clock. A nil clock is ignored.
func WithClock(clk clock.Clock) OptionFunc {
	return func(o *Options) {
		if clk != nil {
			o.Clock = clk
		}
	}
}

// Sets the event sink. Several calls fan out to every sink given.
func WithEventSink(sink events.Sink) OptionFunc {
	return func(o *Options) {
		switch {
		case sink == nil:
		case o.Sink == nil:
			o.Sink = sink
		default:
			o.Sink = events.Multi(o.Sink, sink)
		}
	}
}

// Sets the logger. A nil logger is ignored.
func WithLogger(log *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// Hasher resolves Hash to an implementation.
func (o *Options) Hasher() (checksum.Hasher, error) {
	h, ok := checksum.ByName(o.Hash)
	if !ok {
		return nil, errors.NewValidationError(
			nil, errors.ErrValidationInvalidData, fmt.Sprintf("unknown hash %q", o.Hash),
		).
			WithField("hash").
			WithProvided(o.Hash).
			WithExpected([]string{"fnv1a", "crc32"})
	}
	return h, nil
}

// Validate checks that the options describe a usable table.
func (o *Options) Validate() error {
	if o.Capacity <= 0 || o.Capacity > MaxCapacity {
		return errors.NewFieldRangeError("capacity", o.Capacity, 1, MaxCapacity)
	}
	if o.DefaultTTL <= 0 || o.DefaultTTL > MaxTTL {
		return errors.NewFieldRangeError("defaultTTL", o.DefaultTTL, time.Nanosecond, MaxTTL)
	}
	if o.Clock == nil {
		return errors.NewRequiredFieldError("clock")
	}
	if _, err := o.Hasher(); err != nil {
		return err
	}
	return nil
}
