package core

// StepperRegistrar is the half of the scheduler owners talk to. Both calls only
// buffer a request; the scheduler applies it at its next commit phase.
type StepperRegistrar interface {
	Register(frequency int, callback Callback, owner Owner, opts ...StepperOption) (*Stepper, error)
	Deregister(s *Stepper)
}

// StepperQuerier answers per-owner questions used for partial-tick driving.
// Priority ranges are inclusive on both ends.
type StepperQuerier interface {
	HasStepperInPriorityRange(owner Owner, start, end int) bool
	HasStepperInSlot(owner Owner, slot QueueSlot) bool
}

// Scheduler defines the contract the driver needs from a scheduler.
//
// A frame is opened by the first tick operation after the previous frame was
// closed. Tick runs everything left in the frame and closes it. TickRange and
// TickSlot run only the matching buckets and leave the frame open until
// EndFrame (or a later Tick) closes it, so the advance phase runs exactly once
// per frame.
type Scheduler interface {
	StepperRegistrar
	StepperQuerier

	Tick() error
	TickRange(start, end int) error
	TickSlot(slot QueueSlot) error
	EndFrame() error

	// CurrentTick returns the number of frames opened so far.
	CurrentTick() uint64
	// FrameOpen reports whether a partial frame is waiting for EndFrame.
	FrameOpen() bool
}
