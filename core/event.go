package core

import (
	"time"

	"github.com/hupe1980/stepmesh/internal/util"
)

// EventKind categorizes scheduling events.
type EventKind string

const (
	// EventRegistered is emitted when a registration request is buffered.
	EventRegistered EventKind = "registered"
	// EventCommitted is emitted when a buffered stepper enters the pending table.
	EventCommitted EventKind = "committed"
	// EventExecuted is emitted after a stepper callback ran.
	EventExecuted EventKind = "executed"
	// EventSkipped is emitted when a due stepper did not run because it was
	// deregistered earlier in the tick or its owner is no longer live.
	EventSkipped EventKind = "skipped"
	// EventDeregistered is emitted when a stepper leaves the pending table.
	EventDeregistered EventKind = "deregistered"
	// EventFailed is emitted when a callback returned an error.
	EventFailed EventKind = "failed"
	// EventFrameOpened marks the end of a commit phase.
	EventFrameOpened EventKind = "frame_opened"
	// EventFrameClosed marks the end of an advance phase.
	EventFrameClosed EventKind = "frame_closed"
)

// Event is an immutable record of something the scheduler did. Stepper fields
// are empty for frame events.
type Event struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	Tick        uint64    `json:"tick"`
	StepperID   string    `json:"stepper_id,omitempty"`
	StepperName string    `json:"stepper_name,omitempty"`
	OwnerName   string    `json:"owner_name,omitempty"`
	Slot        QueueSlot `json:"slot"`
	Priority    int       `json:"priority"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEvent creates a bare event of the given kind for a tick.
func NewEvent(kind EventKind, tick uint64) Event {
	return Event{
		ID:        util.NewID(),
		Kind:      kind,
		Tick:      tick,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepperEvent creates an event describing a stepper.
func NewStepperEvent(kind EventKind, tick uint64, s *Stepper) Event {
	e := NewEvent(kind, tick)
	e.StepperID = s.ID()
	e.StepperName = s.Name()
	e.OwnerName = OwnerName(s.Owner())
	e.Slot = s.Slot()
	e.Priority = s.Priority()
	return e
}

// EventSink receives scheduling events. Record is called synchronously from
// inside the tick and must not call back into the scheduler.
type EventSink interface {
	Record(ev Event)
}

// NoOpSink discards all events.
type NoOpSink struct{}

// Record discards the event.
func (NoOpSink) Record(Event) {}
