package storage

import (
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/pkg/checksum"
	"github.com/iamBelugaa/mactable/pkg/clock"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

// SlotState is the lifecycle state of a table slot.
type SlotState uint8

const (
	SlotEmpty     SlotState = iota // Never used. Terminates every probe.
	SlotTombstone                  // Deleted, expired or evicted. Reusable by a later insert.
	SlotOccupied                   // Holds a live entry.
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotTombstone:
		return "tombstone"
	case SlotOccupied:
		return "occupied"
	}
	return "unknown"
}

// Role is a caller defined classification of an entry, e.g. client or gateway.
type Role uint8

// DefaultRole is assigned when an insert does not specify one.
const DefaultRole Role = 0

// Entry is one table slot.
type Entry struct {
	Address   macaddr.Address // Address is the key.
	ExpiresAt int64           // ExpiresAt is the absolute expiry time in unix nanoseconds.
	State     SlotState       // State tells whether the slot is live.
	Role      Role            // Role drives protection and bulk eviction.
}

// Expiry returns ExpiresAt as a UTC time.Time.
func (e Entry) Expiry() time.Time {
	return time.Unix(0, e.ExpiresAt).UTC()
}

// Stats holds the table counters. ActiveEntries always equals the number of occupied slots.
type Stats struct {
	TotalInserts  uint64 `json:"totalInserts"`
	TotalDeletes  uint64 `json:"totalDeletes"`
	TotalExpired  uint64 `json:"totalExpired"`
	ActiveEntries uint64 `json:"activeEntries"`
}

// InsertOptions optionally override the TTL and role of a single insert.
type InsertOptions struct {
	TTL     time.Duration
	HasTTL  bool
	Role    Role
	HasRole bool
}

// Indexer is kept in sync with every change of a slot's occupancy or expiry.
type Indexer interface {
	// Track records that slot is occupied and expires at expiresAt, replacing any
	// previous record for the slot.
	Track(slot int, expiresAt int64)

	// Untrack forgets slot.
	Untrack(slot int)
}

// Config holds the collaborators of a Store.
type Config struct {
	Capacity   int
	DefaultTTL time.Duration
	Hasher     checksum.Hasher
	Clock      clock.Clock
	Indexer    Indexer
	Sink       events.Sink
}

// Store is the open-addressed address table. It exclusively owns the slot array and the
// statistics block. Store is not safe for concurrent use; callers serialize access.
type Store struct {
	entries    []Entry
	defaultTTL time.Duration
	hasher     checksum.Hasher
	clock      clock.Clock
	indexer    Indexer
	sink       events.Sink
	stats      Stats
	log        *zap.SugaredLogger
}

// SlotEntry pairs an occupied slot with a copy of its entry.
type SlotEntry struct {
	Slot int `json:"slot"`
	Entry
}
