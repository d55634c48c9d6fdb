// Package engine provides the address table aggregate that coordinates the store, the expiry
// scheduler and the eviction policies under one lock.
package engine

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/internal/eviction"
	"github.com/iamBelugaa/mactable/internal/expiry"
	"github.com/iamBelugaa/mactable/internal/index"
	"github.com/iamBelugaa/mactable/internal/storage"
	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
	"github.com/iamBelugaa/mactable/pkg/options"
)

// New creates an engine from validated options. Construction is all-or-nothing: nothing is
// armed or allocated for the caller unless every component could be built.
func New(ctx context.Context, log *zap.SugaredLogger, opts *options.Options) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewTableError(err, errors.ErrTableContextDone, "Engine initialization cancelled").
			WithOperation("init")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hasher, err := opts.Hasher()
	if err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = events.Nop
	}

	log.Infow("Initializing table engine", "capacity", opts.Capacity, "defaultTTL", opts.DefaultTTL)
	e := &Engine{
		log:     log,
		sink:    sink,
		options: opts,
		scratch: make([]index.Item, 0, opts.Capacity),
	}

	sched, err := expiry.New(log, opts.Clock, opts.Capacity, e.onTimer)
	if err != nil {
		return nil, errors.NewTableError(err, errors.ErrTableInitFailed, "Failed to create expiry scheduler").
			WithOperation("init")
	}

	store, err := storage.New(log, storage.Config{
		Capacity:   opts.Capacity,
		DefaultTTL: opts.DefaultTTL,
		Hasher:     hasher,
		Clock:      opts.Clock,
		Indexer:    sched,
		Sink:       sink,
	})
	if err != nil {
		sched.Close()
		return nil, errors.NewTableError(err, errors.ErrTableInitFailed, "Failed to create address store").
			WithOperation("init")
	}

	e.sched = sched
	e.store = store
	return e, nil
}

// Insert adds addr or refreshes its expiry and role.
func (e *Engine) Insert(ctx context.Context, addr macaddr.Address, req InsertRequest) (events.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "insert"); err != nil {
		return events.NotFound, err
	}

	if req.EvictOnFull && e.store.Len() == e.store.Capacity() {
		if _, present := e.store.Lookup(addr); !present {
			evicted, err := eviction.Oldest(e.store, e.sched.Index(), req.Protected, e.scratch)
			if err != nil {
				return events.NotFound, err
			}
			if !evicted {
				e.log.Debugw("No evictable entry to make room", "address", addr.String())
			}
		}
	}

	outcome := e.store.Insert(addr, req.InsertOptions)
	e.log.Debugw("Insert completed", "address", addr.String(), "outcome", outcome)

	if outcome == events.Full && req.EvictOnFull {
		return outcome, errors.NewTableError(nil, errors.ErrTableFull, "Table is full and every entry is protected").
			WithOperation("insert").
			WithAddress(addr.String())
	}
	return outcome, nil
}

// Exists reports Found or NotFound for addr.
func (e *Engine) Exists(ctx context.Context, addr macaddr.Address) (events.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "exists"); err != nil {
		return events.NotFound, err
	}
	return e.store.Exists(addr), nil
}

// Delete removes addr. It reports Deleted or NotFound.
func (e *Engine) Delete(ctx context.Context, addr macaddr.Address) (events.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "delete"); err != nil {
		return events.NotFound, err
	}

	outcome := e.store.Delete(addr)
	e.log.Debugw("Delete completed", "address", addr.String(), "outcome", outcome)
	return outcome, nil
}

// DeleteByIndex removes the entry in slot, if any.
func (e *Engine) DeleteByIndex(ctx context.Context, slot int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "deleteByIndex"); err != nil {
		return false, err
	}
	return e.store.DeleteByIndex(slot), nil
}

// GetByIndex returns a copy of the entry in slot.
func (e *Engine) GetByIndex(ctx context.Context, slot int) (storage.Entry, events.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "getByIndex"); err != nil {
		return storage.Entry{}, events.NotFound, err
	}

	entry, outcome := e.store.GetByIndex(slot)
	return entry, outcome, nil
}

// EvictByRole removes every entry holding role.
func (e *Engine) EvictByRole(ctx context.Context, role storage.Role) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "evictByRole"); err != nil {
		return 0, err
	}

	evicted := eviction.ByRole(e.store, role)
	e.log.Infow("Evicted entries by role", "role", role, "evicted", evicted)
	return evicted, nil
}

// RemoveOldest evicts the entry closest to expiry whose role is not protected.
func (e *Engine) RemoveOldest(ctx context.Context, protected []storage.Role) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "removeOldest"); err != nil {
		return false, err
	}

	evicted, err := eviction.Oldest(e.store, e.sched.Index(), protected, e.scratch)
	if err != nil {
		e.log.Errorw("Failed to remove oldest entry", "error", err)
		return false, err
	}

	e.log.Debugw("Remove oldest completed", "evicted", evicted, "protected", protected)
	return evicted, nil
}

// Clear removes every entry.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "clear"); err != nil {
		return 0, err
	}

	cleared := eviction.Clear(e.store)
	e.log.Infow("Table cleared", "evicted", cleared)
	return cleared, nil
}

// Entries returns a copy of every live entry in slot order.
func (e *Engine) Entries(ctx context.Context) ([]storage.SlotEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(ctx, "entries"); err != nil {
		return nil, err
	}

	out := make([]storage.SlotEntry, 0, e.store.Len())
	e.store.Range(func(slot int, entry storage.Entry) bool {
		out = append(out, storage.SlotEntry{Slot: slot, Entry: entry})
		return true
	})
	return out, nil
}

// Stats returns a snapshot of the counters.
func (e *Engine) Stats() (storage.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(context.Background(), "stats"); err != nil {
		return storage.Stats{}, err
	}
	return e.store.Stats(), nil
}

// ResetStats zeroes the historical counters.
func (e *Engine) ResetStats() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(context.Background(), "resetStats"); err != nil {
		return err
	}

	e.store.ResetStats()
	e.log.Infow("Statistics reset")
	return nil
}

// NextExpiry returns the deadline the expiry timer is armed for.
func (e *Engine) NextExpiry() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.NextDeadline()
}

// SchedulerState returns the expiry timer state.
func (e *Engine) SchedulerState() expiry.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.State()
}

// Capacity returns the fixed number of slots.
func (e *Engine) Capacity() int {
	return e.options.Capacity
}

// Close stops the expiry timer and closes the event sink. Any later call fails with
// ErrTableClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed.CompareAndSwap(false, true) {
		return errors.NewTableError(nil, errors.ErrTableClosed, "Table is already closed").WithOperation("close")
	}

	e.log.Infow("Closing table engine", "active", e.store.Len())
	e.sched.Close()

	var err error
	if closeErr := events.CloseSink(e.sink); closeErr != nil {
		e.log.Errorw("Failed to close event sink", "error", closeErr)
		err = multierr.Append(err, closeErr)
	}

	if err == nil {
		e.log.Infow("Table engine closed successfully")
	}
	return err
}

// onTimer runs on the clock's goroutine when the expiry timer elapses.
func (e *Engine) onTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return
	}
	e.sched.Sweep(e.store)
}

// guard must be called with mu held.
func (e *Engine) guard(ctx context.Context, operation string) error {
	if e.closed.Load() {
		return errors.NewTableError(nil, errors.ErrTableClosed, "Table is closed").WithOperation(operation)
	}
	if err := ctx.Err(); err != nil {
		return errors.NewTableError(err, errors.ErrTableContextDone, "Operation cancelled").WithOperation(operation)
	}
	return nil
}
