// Package eviction implements the table's eviction policies: bulk eviction by role, clear,
// and eviction of the entry closest to expiry outside a set of protected roles.
//
// Every victim is removed through Store.DeleteByIndex so statistics, index removal and
// event notification happen exactly as for an explicit delete.
package eviction

import (
	"github.com/iamBelugaa/mactable/internal/index"
	"github.com/iamBelugaa/mactable/internal/storage"
	"github.com/iamBelugaa/mactable/pkg/events"
)

// Store is the part of the address store the policies drive.
type Store interface {
	Capacity() int
	GetByIndex(slot int) (storage.Entry, events.Outcome)
	DeleteByIndex(slot int) bool
}

// Heap is the expiry index as used by Oldest.
type Heap interface {
	Pop() (index.Item, bool)
	Push(item index.Item) error
}

// ByRole evicts every entry holding role and returns how many were evicted.
func ByRole(store Store, role storage.Role) int {
	return evictWhere(store, func(e storage.Entry) bool { return e.Role == role })
}

// Clear evicts every entry and returns how many were evicted.
func Clear(store Store) int {
	return evictWhere(store, func(storage.Entry) bool { return true })
}

func evictWhere(store Store, match func(storage.Entry) bool) int {
	evicted := 0
	for slot := 0; slot < store.Capacity(); slot++ {
		entry, outcome := store.GetByIndex(slot)
		if outcome != events.Found || !match(entry) {
			continue
		}
		if store.DeleteByIndex(slot) {
			evicted++
		}
	}
	return evicted
}

// Oldest evicts the entry with the globally earliest expiry whose role is not in
// protected. An empty protected list makes every role eligible.
//
// Items are popped from heap in priority order. Protected items are parked in scratch,
// whose capacity must be at least the number of indexed items, and items that no longer
// match the live store are dropped. Parked items are pushed back before the victim is
// deleted, so the index ends up holding every surviving entry unchanged. It returns false,
// leaving the table untouched, when the heap is empty or every entry is protected.
func Oldest(store Store, heap Heap, protected []storage.Role, scratch []index.Item) (bool, error) {
	parked := scratch[:0]
	victim := -1

	for {
		item, ok := heap.Pop()
		if !ok {
			break
		}

		entry, outcome := store.GetByIndex(item.Slot)
		if outcome != events.Found || entry.ExpiresAt != item.ExpiresAt {
			continue
		}

		if isProtected(entry.Role, protected) {
			parked = append(parked, item)
			continue
		}

		victim = item.Slot
		break
	}

	for _, item := range parked {
		if err := heap.Push(item); err != nil {
			return false, err
		}
	}

	if victim < 0 {
		return false, nil
	}
	return store.DeleteByIndex(victim), nil
}

func isProtected(role storage.Role, protected []storage.Role) bool {
	for _, p := range protected {
		if p == role {
			return true
		}
	}
	return false
}
