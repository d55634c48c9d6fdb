package expiry

import (
	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/internal/index"
	"github.com/iamBelugaa/mactable/pkg/clock"
)

// State is the scheduler's timer state.
type State uint8

const (
	Idle   State = iota // Nothing indexed, timer disarmed.
	Armed               // Timer counting down to the earliest expiry.
	Firing              // Timer elapsed, sweep in progress.
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Firing:
		return "firing"
	}
	return "unknown"
}

// Slots is the live store as seen by a sweep.
type Slots interface {
	// Expire tombstones slot if it is still occupied with exactly expiresAt and reports
	// whether it did.
	Expire(slot int, expiresAt int64) bool
}

// Scheduler owns the expiry index and the single one-shot timer armed for its minimum.
// It is not safe for concurrent use: Track, Untrack and Sweep must run under the same
// exclusion as the store mutations that drive them.
type Scheduler struct {
	index    *index.Index
	clock    clock.Clock
	timer    clock.Timer
	onFire   func()
	deadline int64
	state    State
	closed   bool
	log      *zap.SugaredLogger
}
