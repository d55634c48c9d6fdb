package engine

import (
	"fmt"

	"github.com/iamBelugaa/mactable/internal/storage"
	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

// Verify checks the table's structural invariants:
//
//   - the active counter equals the number of occupied slots,
//   - no address occupies more than one slot,
//   - every occupied slot is indexed exactly once with its current expiry, and nothing else is,
//   - every occupied address is reachable by its probe sequence.
//
// It returns a TableError describing the first violation found.
func (e *Engine) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	indexed := make(map[int]int64, e.sched.Len())
	for _, item := range e.sched.Index().Items() {
		if _, dup := indexed[item.Slot]; dup {
			return violation(item.Slot, "slot indexed more than once")
		}
		indexed[item.Slot] = item.ExpiresAt
	}

	var verr error
	seen := make(map[macaddr.Address]int, e.store.Len())
	occupied := 0

	e.store.Range(func(slot int, entry storage.Entry) bool {
		occupied++

		if prev, dup := seen[entry.Address]; dup {
			verr = violation(slot, fmt.Sprintf("address also stored in slot %d", prev)).WithAddress(entry.Address.String())
			return false
		}
		seen[entry.Address] = slot

		exp, ok := indexed[slot]
		if !ok {
			verr = violation(slot, "occupied slot is not indexed")
			return false
		}
		if exp != entry.ExpiresAt {
			verr = violation(slot, "indexed expiry differs from entry expiry")
			return false
		}
		delete(indexed, slot)

		if found, ok := e.store.Lookup(entry.Address); !ok || found != slot {
			verr = violation(slot, "address unreachable by probing").WithAddress(entry.Address.String())
			return false
		}
		return true
	})
	if verr != nil {
		return verr
	}

	for slot := range indexed {
		return violation(slot, "indexed slot is not occupied")
	}

	if active := e.store.Stats().ActiveEntries; active != uint64(occupied) {
		return errors.NewTableError(nil, errors.ErrSystemInternal,
			fmt.Sprintf("active counter %d differs from %d occupied slots", active, occupied)).
			WithOperation("verify")
	}
	return nil
}

func violation(slot int, msg string) *errors.TableError {
	return errors.NewTableError(nil, errors.ErrSystemInternal, msg).WithOperation("verify").WithSlot(slot)
}
