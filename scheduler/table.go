package scheduler

import (
	"slices"

	"github.com/hupe1980/stepmesh/core"
)

// entry is the scheduler's mutable view of a committed stepper.
type entry struct {
	stepper   *core.Stepper
	remaining int  // ticks until due; 0 means due this tick
	fired     bool // consumed its due slot in the current frame
}

// table is the pending table. Buckets are keyed by (slot, priority) and hold
// entries in commit order, which is also registration order. The delay
// dimension lives in each entry's countdown.
type table struct {
	buckets map[Key][]*entry
	members map[*core.Stepper]*entry
	index   *Index
}

func newTable() *table {
	return &table{
		buckets: make(map[Key][]*entry),
		members: make(map[*core.Stepper]*entry),
		index:   NewIndex(),
	}
}

// insert appends s to its bucket with the given countdown. A stepper that is
// already a member is left untouched so that only one copy ever exists.
func (t *table) insert(s *core.Stepper, remaining int) bool {
	if _, ok := t.members[s]; ok {
		return false
	}
	e := &entry{stepper: s, remaining: remaining}
	k := KeyOf(s)
	t.buckets[k] = append(t.buckets[k], e)
	t.members[s] = e
	t.index.add(k)
	return true
}

// remove deletes s from its bucket with a linear scan of that bucket.
func (t *table) remove(s *core.Stepper) bool {
	if _, ok := t.members[s]; !ok {
		return false
	}
	k := KeyOf(s)
	bucket := t.buckets[k]
	i := slices.IndexFunc(bucket, func(e *entry) bool { return e.stepper == s })
	if i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(t.buckets, k)
	} else {
		t.buckets[k] = bucket
	}
	delete(t.members, s)
	t.index.remove(k)
	return true
}

// due snapshots the entries of bucket k that must run this tick. The returned
// slice is a copy, so the bucket may change while the caller iterates.
func (t *table) due(k Key) []*entry {
	var out []*entry
	for _, e := range t.buckets[k] {
		if e.remaining == 0 && !e.fired {
			out = append(out, e)
		}
	}
	return out
}

// advance moves every entry one tick closer to execution. Entries that fired
// restart their countdown at frequency-1. An entry reaching zero here becomes
// due in the next frame, never in the current one. Due entries whose bucket
// was not executed in this frame stay due.
func (t *table) advance() {
	for _, bucket := range t.buckets {
		for _, e := range bucket {
			switch {
			case e.fired:
				e.remaining = e.stepper.Frequency() - 1
				e.fired = false
			case e.remaining > 0:
				e.remaining--
			}
		}
	}
}

func (t *table) lookup(s *core.Stepper) (*entry, bool) {
	e, ok := t.members[s]
	return e, ok
}

func (t *table) len() int { return len(t.members) }
