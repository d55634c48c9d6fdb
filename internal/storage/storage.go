// Package storage implements the address store: a fixed-capacity open-addressed hash table
// with linear probing and tombstone deletion.
package storage

import (
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

// New allocates a Store with cfg.Capacity empty slots.
func New(log *zap.SugaredLogger, cfg Config) (*Store, error) {
	if cfg.Capacity <= 0 {
		return nil, errors.NewRequiredFieldError("capacity").WithProvided(cfg.Capacity).WithExpected(">0")
	}
	if cfg.DefaultTTL <= 0 {
		return nil, errors.NewRequiredFieldError("defaultTTL").WithProvided(cfg.DefaultTTL).WithExpected(">0")
	}
	if cfg.Hasher == nil {
		return nil, errors.NewRequiredFieldError("hasher")
	}
	if cfg.Clock == nil {
		return nil, errors.NewRequiredFieldError("clock")
	}
	if cfg.Indexer == nil {
		return nil, errors.NewRequiredFieldError("indexer")
	}

	sink := cfg.Sink
	if sink == nil {
		sink = events.Nop
	}

	log.Infow(
		"Initializing address store",
		"capacity", cfg.Capacity,
		"defaultTTL", cfg.DefaultTTL,
		"hash", cfg.Hasher.Name(),
	)

	return &Store{
		log:        log,
		sink:       sink,
		clock:      cfg.Clock,
		hasher:     cfg.Hasher,
		indexer:    cfg.Indexer,
		defaultTTL: cfg.DefaultTTL,
		entries:    make([]Entry, cfg.Capacity),
	}, nil
}

// Capacity returns the fixed number of slots.
func (s *Store) Capacity() int {
	return len(s.entries)
}

// Len returns the number of occupied slots.
func (s *Store) Len() int {
	return int(s.stats.ActiveEntries)
}

// Insert adds addr or refreshes its expiry and role if it is already present.
//
// The probe starts at hash(addr) mod N and visits at most N slots. A key match wins, and
// the first empty slot ends the probe with the entry stored there. The first tombstone seen
// is remembered and only used when the whole cycle finds neither a match nor an empty slot;
// with no tombstone either the insert reports Full.
func (s *Store) Insert(addr macaddr.Address, opts InsertOptions) events.Outcome {
	now := s.clock.Now()
	ttl := s.defaultTTL
	if opts.HasTTL {
		ttl = opts.TTL
	}
	role := DefaultRole
	if opts.HasRole {
		role = opts.Role
	}
	expiresAt := now.Add(ttl).UnixNano()

	n := len(s.entries)
	start := s.slotFor(addr)
	tombstone := -1

	for i := 0; i < n; i++ {
		probe := (start + i) % n
		entry := &s.entries[probe]

		switch entry.State {
		case SlotOccupied:
			if entry.Address == addr {
				entry.ExpiresAt = expiresAt
				entry.Role = role
				s.indexer.Track(probe, expiresAt)
				s.emit(probe, addr, events.Updated, now)
				return events.Updated
			}

		case SlotTombstone:
			if tombstone == -1 {
				tombstone = probe
			}

		case SlotEmpty:
			s.occupy(probe, addr, expiresAt, role, now)
			return events.Inserted
		}
	}

	if tombstone != -1 {
		s.occupy(tombstone, addr, expiresAt, role, now)
		return events.Inserted
	}

	s.log.Debugw("Address store full", "address", addr.String(), "capacity", n)
	s.emit(events.NoSlot, addr, events.Full, now)
	return events.Full
}

// Exists reports whether addr is present.
func (s *Store) Exists(addr macaddr.Address) events.Outcome {
	if _, ok := s.find(addr); ok {
		return events.Found
	}
	return events.NotFound
}

// Lookup returns the slot holding addr.
func (s *Store) Lookup(addr macaddr.Address) (int, bool) {
	return s.find(addr)
}

// Delete tombstones the slot holding addr.
func (s *Store) Delete(addr macaddr.Address) events.Outcome {
	slot, ok := s.find(addr)
	if !ok {
		return events.NotFound
	}

	s.remove(slot)
	return events.Deleted
}

// DeleteByIndex tombstones slot if it is occupied. It reports whether anything was removed.
func (s *Store) DeleteByIndex(slot int) bool {
	if !s.occupied(slot) {
		return false
	}

	s.remove(slot)
	return true
}

// GetByIndex returns a copy of the entry in slot, or NotFound when slot is out of range
// or not occupied.
func (s *Store) GetByIndex(slot int) (Entry, events.Outcome) {
	if !s.occupied(slot) {
		return Entry{}, events.NotFound
	}
	return s.entries[slot], events.Found
}

// ExpiryOf returns the live expiry of an occupied slot.
func (s *Store) ExpiryOf(slot int) (int64, bool) {
	if !s.occupied(slot) {
		return 0, false
	}
	return s.entries[slot].ExpiresAt, true
}

// RoleOf returns the role of an occupied slot.
func (s *Store) RoleOf(slot int) (Role, bool) {
	if !s.occupied(slot) {
		return 0, false
	}
	return s.entries[slot].Role, true
}

// Expire tombstones slot on behalf of the expiry scheduler. It only acts when the slot is
// still occupied with exactly the expiry the scheduler popped; anything else means the
// slot changed since it was scheduled and the call is ignored. The index is not touched,
// the scheduler has already removed the item.
func (s *Store) Expire(slot int, expiresAt int64) bool {
	if !s.occupied(slot) || s.entries[slot].ExpiresAt != expiresAt {
		return false
	}

	entry := &s.entries[slot]
	entry.State = SlotTombstone
	s.stats.TotalExpired++
	s.stats.ActiveEntries--

	s.emit(slot, entry.Address, events.Timeout, s.clock.Now())
	return true
}

// Range calls fn for every occupied slot in slot order until fn returns false. fn must
// not mutate the store.
func (s *Store) Range(fn func(slot int, entry Entry) bool) {
	for i := range s.entries {
		if s.entries[i].State != SlotOccupied {
			continue
		}
		if !fn(i, s.entries[i]) {
			return
		}
	}
}

// Slots returns a copy of every slot, including empty and tombstoned ones.
func (s *Store) Slots() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	return s.stats
}

// ResetStats zeroes the historical counters. ActiveEntries tracks live occupancy and is kept.
func (s *Store) ResetStats() {
	s.stats.TotalInserts = 0
	s.stats.TotalDeletes = 0
	s.stats.TotalExpired = 0
}

func (s *Store) slotFor(addr macaddr.Address) int {
	return int(s.hasher.Sum32(addr[:]) % uint32(len(s.entries)))
}

// find walks the probe sequence for addr. An empty slot ends the walk: no entry is ever
// stored past one.
func (s *Store) find(addr macaddr.Address) (int, bool) {
	n := len(s.entries)
	start := s.slotFor(addr)

	for i := 0; i < n; i++ {
		probe := (start + i) % n
		entry := &s.entries[probe]

		if entry.State == SlotEmpty {
			return -1, false
		}
		if entry.State == SlotOccupied && entry.Address == addr {
			return probe, true
		}
	}
	return -1, false
}

func (s *Store) occupied(slot int) bool {
	return slot >= 0 && slot < len(s.entries) && s.entries[slot].State == SlotOccupied
}

func (s *Store) occupy(slot int, addr macaddr.Address, expiresAt int64, role Role, now time.Time) {
	s.entries[slot] = Entry{Address: addr, ExpiresAt: expiresAt, State: SlotOccupied, Role: role}
	s.stats.TotalInserts++
	s.stats.ActiveEntries++

	s.indexer.Track(slot, expiresAt)
	s.emit(slot, addr, events.Inserted, now)
}

// remove tombstones an occupied slot. Slots never return to empty so probe chains that
// pass through them stay intact.
func (s *Store) remove(slot int) {
	entry := &s.entries[slot]
	entry.State = SlotTombstone
	s.stats.ActiveEntries--
	s.stats.TotalDeletes++

	s.indexer.Untrack(slot)
	s.emit(slot, entry.Address, events.Deleted, s.clock.Now())
}

func (s *Store) emit(slot int, addr macaddr.Address, outcome events.Outcome, at time.Time) {
	s.sink.OnEvent(events.Event{Slot: slot, Address: addr, Outcome: outcome, At: at})
}
