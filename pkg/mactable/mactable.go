// Package mactable provides a fixed-capacity table of hardware addresses with per-entry
// expiry, role-protected eviction and synchronous event notification.
package mactable

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/internal/engine"
	"github.com/iamBelugaa/mactable/internal/storage"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/logger"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
	"github.com/iamBelugaa/mactable/pkg/options"
)

type (
	// Role classifies an entry for protection and bulk eviction.
	Role = storage.Role
	// Entry is a copy of one table slot.
	Entry = storage.Entry
	// SlotEntry pairs a live entry with its slot.
	SlotEntry = storage.SlotEntry
	// Stats holds the table counters.
	Stats = storage.Stats
)

// Table is a MAC address table. All methods are safe for concurrent use; they are
// serialized with each other and with automatic expiry.
type Table struct {
	engine  *engine.Engine
	options *options.Options
	log     *zap.SugaredLogger
}

// New creates a table. Construction is all-or-nothing: a zero capacity, a non-positive
// default TTL or an unknown hash fails without leaving anything running.
func New(ctx context.Context, service string, opts ...options.OptionFunc) (*Table, error) {
	defaultOpts := options.DefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	log := defaultOpts.Logger
	if log == nil {
		log = logger.New(service)
	}

	eng, err := engine.New(ctx, log, &defaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize address table: %w", err)
	}

	log.Infow(
		"Address table initialized successfully",
		"service", service,
		"capacity", defaultOpts.Capacity,
		"defaultTTL", defaultOpts.DefaultTTL,
		"hash", defaultOpts.Hash,
	)

	return &Table{engine: eng, options: &defaultOpts, log: log}, nil
}

// Insert adds addr, or refreshes the expiry and role of an address already present. It
// reports Inserted, Updated or Full.
func (t *Table) Insert(ctx context.Context, addr macaddr.Address, opts ...InsertOption) (events.Outcome, error) {
	var req engine.InsertRequest
	for _, opt := range opts {
		opt(&req)
	}

	if err := validateInsert(&req); err != nil {
		return events.NotFound, fmt.Errorf("invalid insert options: %w", err)
	}
	return t.engine.Insert(ctx, addr, req)
}

// Exists reports Found or NotFound. Lookups do not refresh the expiry.
func (t *Table) Exists(ctx context.Context, addr macaddr.Address) (events.Outcome, error) {
	return t.engine.Exists(ctx, addr)
}

// Delete removes addr and reports Deleted or NotFound.
func (t *Table) Delete(ctx context.Context, addr macaddr.Address) (events.Outcome, error) {
	return t.engine.Delete(ctx, addr)
}

// DeleteByIndex removes the entry in slot. It reports false for an unoccupied slot.
func (t *Table) DeleteByIndex(ctx context.Context, slot int) (bool, error) {
	if err := validateSlot(slot, t.options.Capacity); err != nil {
		return false, fmt.Errorf("invalid slot: %w", err)
	}
	return t.engine.DeleteByIndex(ctx, slot)
}

// GetByIndex returns a copy of the entry in slot, or NotFound when the slot is not occupied.
func (t *Table) GetByIndex(ctx context.Context, slot int) (Entry, events.Outcome, error) {
	if err := validateSlot(slot, t.options.Capacity); err != nil {
		return Entry{}, events.NotFound, fmt.Errorf("invalid slot: %w", err)
	}
	return t.engine.GetByIndex(ctx, slot)
}

// EvictByRole removes every entry holding role and returns how many were removed.
func (t *Table) EvictByRole(ctx context.Context, role Role) (int, error) {
	return t.engine.EvictByRole(ctx, role)
}

// RemoveOldest removes the entry closest to expiry whose role is not in protected. It
// reports false when the table is empty or every entry is protected.
func (t *Table) RemoveOldest(ctx context.Context, protected ...Role) (bool, error) {
	return t.engine.RemoveOldest(ctx, protected)
}

// Clear removes every entry and returns how many were removed.
func (t *Table) Clear(ctx context.Context) (int, error) {
	return t.engine.Clear(ctx)
}

// Entries returns a copy of every live entry in slot order.
func (t *Table) Entries(ctx context.Context) ([]SlotEntry, error) {
	return t.engine.Entries(ctx)
}

func (t *Table) Stats() (Stats, error) {
	return t.engine.Stats()
}

// ResetStats zeroes the insert, delete and expiry counters. The active count is kept.
func (t *Table) ResetStats() error {
	return t.engine.ResetStats()
}

// NextExpiry returns the time the next automatic expiry sweep is due.
func (t *Table) NextExpiry() (time.Time, bool) {
	return t.engine.NextExpiry()
}

// Verify checks the table's internal consistency.
func (t *Table) Verify() error {
	return t.engine.Verify()
}

func (t *Table) Capacity() int {
	return t.options.Capacity
}

// Close stops automatic expiry and closes the event sink.
func (t *Table) Close() error {
	t.log.Infow("Close request received")
	return t.engine.Close()
}
