package engine

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/internal/expiry"
	"github.com/iamBelugaa/mactable/internal/index"
	"github.com/iamBelugaa/mactable/internal/storage"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/options"
)

// Engine is the table aggregate. It wires the address store to the expiry scheduler and the
// event sink, and owns the mutex that serializes every mutation path, including the expiry
// timer's sweeps.
type Engine struct {
	mu      sync.Mutex
	closed  atomic.Bool
	store   *storage.Store
	sched   *expiry.Scheduler
	sink    events.Sink
	scratch []index.Item // Parking space for RemoveOldest, sized to capacity.
	options *options.Options
	log     *zap.SugaredLogger
}

// InsertRequest describes one insert.
type InsertRequest struct {
	storage.InsertOptions

	// EvictOnFull makes room for a new address in a full table by evicting the entry closest
	// to expiry whose role is not in Protected.
	EvictOnFull bool
	Protected   []storage.Role
}
