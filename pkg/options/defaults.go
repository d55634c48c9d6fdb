package options

import (
	"time"

	"github.com/iamBelugaa/mactable/pkg/clock"
)

const (
	DefaultCapacity = 64
	MaxCapacity     = 1 << 20

	DefaultTTL = 30 * time.Second
	MaxTTL     = 365 * 24 * time.Hour

	DefaultHash = "fnv1a"
)

var defaultOptions = Options{
	Capacity:   DefaultCapacity,
	DefaultTTL: DefaultTTL,
	Hash:       DefaultHash,
	Clock:      clock.System{},
}

func DefaultOptions() Options {
	return defaultOptions
}
