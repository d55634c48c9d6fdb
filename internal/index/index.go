// Package index implements the expiry index: a fixed-capacity minimum heap over absolute
// expiry times with removal by slot.
package index

import (
	"fmt"

	"github.com/iamBelugaa/mactable/pkg/errors"
)

// New allocates an index able to hold capacity items.
func New(capacity int) (*Index, error) {
	if capacity <= 0 {
		return nil, errors.NewFieldRangeError("capacity", capacity, 1, "unbounded")
	}
	return &Index{items: make([]Item, 0, capacity)}, nil
}

func (idx *Index) Len() int {
	return len(idx.items)
}

func (idx *Index) Cap() int {
	return cap(idx.items)
}

// Push adds an item. It fails only when the index already holds Cap items.
func (idx *Index) Push(item Item) error {
	if len(idx.items) == cap(idx.items) {
		return errors.NewTableError(
			nil, errors.ErrIndexOverflow, fmt.Sprintf("expiry index is full at %d items", cap(idx.items)),
		).
			WithOperation("push").
			WithSlot(item.Slot)
	}

	idx.items = append(idx.items, item)
	idx.up(len(idx.items) - 1)
	return nil
}

// Peek returns the item with the earliest expiry without removing it.
func (idx *Index) Peek() (Item, bool) {
	if len(idx.items) == 0 {
		return Item{}, false
	}
	return idx.items[0], true
}

// Pop removes and returns the item with the earliest expiry.
func (idx *Index) Pop() (Item, bool) {
	if len(idx.items) == 0 {
		return Item{}, false
	}

	top := idx.items[0]
	last := len(idx.items) - 1
	idx.items[0] = idx.items[last]
	idx.items = idx.items[:last]
	if last > 0 {
		idx.down(0)
	}
	return top, true
}

// Remove deletes the item for slot, if present. The slot is found by linear scan; the
// hole is filled with the last item, which then moves either up or down.
func (idx *Index) Remove(slot int) bool {
	pos := idx.find(slot)
	if pos < 0 {
		return false
	}

	last := len(idx.items) - 1
	idx.items[pos] = idx.items[last]
	idx.items = idx.items[:last]

	if pos < last {
		if !idx.up(pos) {
			idx.down(pos)
		}
	}
	return true
}

// Contains reports whether slot has an item.
func (idx *Index) Contains(slot int) bool {
	return idx.find(slot) >= 0
}

// Lookup returns the expiry recorded for slot.
func (idx *Index) Lookup(slot int) (int64, bool) {
	pos := idx.find(slot)
	if pos < 0 {
		return 0, false
	}
	return idx.items[pos].ExpiresAt, true
}

// Items returns a copy of the heap array, in heap order.
func (idx *Index) Items() []Item {
	out := make([]Item, len(idx.items))
	copy(out, idx.items)
	return out
}

// Reset drops every item while keeping the backing array.
func (idx *Index) Reset() {
	idx.items = idx.items[:0]
}

func (idx *Index) find(slot int) int {
	for i := range idx.items {
		if idx.items[i].Slot == slot {
			return i
		}
	}
	return -1
}

// up moves the item at i toward the root and reports whether it moved.
func (idx *Index) up(i int) bool {
	start := i
	for i > 0 {
		parent := (i - 1) / 2
		if idx.items[i].ExpiresAt >= idx.items[parent].ExpiresAt {
			break
		}
		idx.items[i], idx.items[parent] = idx.items[parent], idx.items[i]
		i = parent
	}
	return i != start
}

func (idx *Index) down(i int) {
	n := len(idx.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2

		if left < n && idx.items[left].ExpiresAt < idx.items[smallest].ExpiresAt {
			smallest = left
		}
		if right < n && idx.items[right].ExpiresAt < idx.items[smallest].ExpiresAt {
			smallest = right
		}
		if smallest == i {
			return
		}

		idx.items[i], idx.items[smallest] = idx.items[smallest], idx.items[i]
		i = smallest
	}
}
