package scheduler

import (
	"math"

	"github.com/hupe1980/stepmesh/core"
)

// Selection records the priority bands a frame has been partially executed
// over. A partial call whose band overlaps one already used belongs to the
// next frame.
type Selection struct {
	bands [][2]int
}

// SlotBand returns the canonical priority band of slot. The outer slots are
// open-ended.
func SlotBand(slot core.QueueSlot) (int, int) {
	switch slot {
	case core.SlotEarly:
		return math.MinInt, core.EarlyPriorityBound - 1
	case core.SlotNormal:
		return core.EarlyPriorityBound, core.NormalPriorityBound - 1
	default:
		return core.NormalPriorityBound, math.MaxInt
	}
}

// Overlaps reports whether [start, end] intersects a recorded band.
func (sel *Selection) Overlaps(start, end int) bool {
	for _, b := range sel.bands {
		if max(start, b[0]) <= min(end, b[1]) {
			return true
		}
	}
	return false
}

// Add records [start, end].
func (sel *Selection) Add(start, end int) {
	sel.bands = append(sel.bands, [2]int{start, end})
}

// Reset forgets all recorded bands.
func (sel *Selection) Reset() { sel.bands = sel.bands[:0] }

// Len returns the number of recorded bands.
func (sel *Selection) Len() int { return len(sel.bands) }
