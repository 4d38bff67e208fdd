package core

import (
	"fmt"
	"strings"
)

// QueueSlot is the coarse ordering bucket a stepper runs in. Slots are
// executed before priorities are considered: every EARLY stepper runs before
// any NORMAL stepper, and every NORMAL stepper before any LATE one.
type QueueSlot int

const (
	// SlotEarly runs first in every tick.
	SlotEarly QueueSlot = iota
	// SlotNormal is the default slot.
	SlotNormal
	// SlotLate runs last in every tick.
	SlotLate
)

// Priority bounds used to derive a slot from a priority value. The soft
// priority range is [0, 1000); values outside it are accepted and clamp into
// the first or last slot.
const (
	EarlyPriorityBound  = 333
	NormalPriorityBound = 666
)

// Canonical priorities assigned when a stepper is created from a slot alone.
const (
	EarlyPriority  = 166
	NormalPriority = 500
	LatePriority   = 833
)

// Slots lists every queue slot in execution order.
var Slots = []QueueSlot{SlotEarly, SlotNormal, SlotLate}

// String returns the string representation of the slot.
func (s QueueSlot) String() string {
	switch s {
	case SlotEarly:
		return "EARLY"
	case SlotNormal:
		return "NORMAL"
	case SlotLate:
		return "LATE"
	default:
		return fmt.Sprintf("QueueSlot(%d)", int(s))
	}
}

// Valid reports whether s is one of the three defined slots.
func (s QueueSlot) Valid() bool {
	return s >= SlotEarly && s <= SlotLate
}

// ParseQueueSlot converts a case-insensitive slot name into a QueueSlot.
func ParseQueueSlot(name string) (QueueSlot, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "EARLY":
		return SlotEarly, nil
	case "NORMAL":
		return SlotNormal, nil
	case "LATE":
		return SlotLate, nil
	default:
		return SlotNormal, fmt.Errorf("%w: unknown queue slot %q", ErrInvalidArgument, name)
	}
}

// SlotForPriority derives the queue slot implied by a priority value.
func SlotForPriority(priority int) QueueSlot {
	switch {
	case priority < EarlyPriorityBound:
		return SlotEarly
	case priority < NormalPriorityBound:
		return SlotNormal
	default:
		return SlotLate
	}
}

// PriorityForSlot returns the representative priority of a slot.
func PriorityForSlot(slot QueueSlot) int {
	switch slot {
	case SlotEarly:
		return EarlyPriority
	case SlotLate:
		return LatePriority
	default:
		return NormalPriority
	}
}

// Canonicalize produces both ordering fields from whichever was supplied.
// A nil pointer means "not given". When both are nil the stepper lands in the
// NORMAL slot at the canonical NORMAL priority.
func Canonicalize(priority *int, slot *QueueSlot) (int, QueueSlot) {
	switch {
	case priority != nil && slot != nil:
		return *priority, *slot
	case priority != nil:
		return *priority, SlotForPriority(*priority)
	case slot != nil:
		return PriorityForSlot(*slot), *slot
	default:
		return NormalPriority, SlotNormal
	}
}
