package mactable

import (
	"time"

	"github.com/iamBelugaa/mactable/internal/engine"
)

// InsertOption customizes a single Insert.
type InsertOption func(*engine.InsertRequest)

// WithTTL overrides the table's default time to live.
func WithTTL(ttl time.Duration) InsertOption {
	return func(r *engine.InsertRequest) {
		r.TTL = ttl
		r.HasTTL = true
	}
}

// WithRole assigns a role. Entries inserted without one get role 0.
func WithRole(role Role) InsertOption {
	return func(r *engine.InsertRequest) {
		r.Role = role
		r.HasRole = true
	}
}

// WithEvictOnFull makes room for a new address in a full table by removing the entry
// closest to expiry whose role is not in protected.
func WithEvictOnFull(protected ...Role) InsertOption {
	return func(r *engine.InsertRequest) {
		r.EvictOnFull = true
		r.Protected = append(r.Protected[:0], protected...)
	}
}
