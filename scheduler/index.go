package scheduler

import (
	"slices"

	"github.com/hupe1980/stepmesh/core"
)

// Key identifies a bucket of the pending table: one queue slot and one
// priority value within it.
type Key struct {
	Slot     core.QueueSlot
	Priority int
}

// KeyOf returns the bucket key of a stepper.
func KeyOf(s *core.Stepper) Key {
	return Key{Slot: s.Slot(), Priority: s.Priority()}
}

// Compare orders keys by slot first, then priority.
func (k Key) Compare(o Key) int {
	if k.Slot != o.Slot {
		if k.Slot < o.Slot {
			return -1
		}
		return 1
	}
	switch {
	case k.Priority < o.Priority:
		return -1
	case k.Priority > o.Priority:
		return 1
	default:
		return 0
	}
}

// Less reports whether k runs before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

// Index answers which slots and priorities are in use. It keeps a reference
// count per key and rebuilds its sorted view only when a key appears or
// disappears. It is fed exclusively by the pending table, so it always
// reflects the last committed state and never the transient buffers.
type Index struct {
	counts map[Key]int
	sorted []Key
	dirty  bool
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{counts: make(map[Key]int)}
}

func (ix *Index) add(k Key) {
	ix.counts[k]++
	if ix.counts[k] == 1 {
		ix.dirty = true
	}
}

func (ix *Index) remove(k Key) {
	n, ok := ix.counts[k]
	if !ok {
		return
	}
	if n <= 1 {
		delete(ix.counts, k)
		ix.dirty = true
		return
	}
	ix.counts[k] = n - 1
}

func (ix *Index) keys() []Key {
	if ix.dirty {
		ix.sorted = ix.sorted[:0]
		for k := range ix.counts {
			ix.sorted = append(ix.sorted, k)
		}
		slices.SortFunc(ix.sorted, Key.Compare)
		ix.dirty = false
	}
	return ix.sorted
}

// Keys returns every active key in execution order.
func (ix *Index) Keys() []Key {
	return slices.Clone(ix.keys())
}

// ActiveQueueSlots returns the distinct slots in use, sorted ascending.
func (ix *Index) ActiveQueueSlots() []core.QueueSlot {
	var slots []core.QueueSlot
	for _, k := range ix.keys() {
		if len(slots) == 0 || slots[len(slots)-1] != k.Slot {
			slots = append(slots, k.Slot)
		}
	}
	return slots
}

// ActivePriorities returns the distinct priorities in use within slot,
// sorted ascending.
func (ix *Index) ActivePriorities(slot core.QueueSlot) []int {
	var priorities []int
	for _, k := range ix.keys() {
		if k.Slot == slot {
			priorities = append(priorities, k.Priority)
		}
	}
	return priorities
}

// Count returns how many committed steppers share key k.
func (ix *Index) Count(k Key) int { return ix.counts[k] }

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.counts) }
