// Package scheduler implements the stepper-ordering engine at the heart of
// stepmesh.
//
// # Frame Lifecycle
//
// Every frame goes through four phases:
//
//  1. Commit: buffered registrations enter the pending table with a countdown
//     of frequency-1+startDelay; buffered deregistrations leave it. The
//     ordering of (slot, priority) buckets is snapshotted.
//  2. Ordering: buckets are visited EARLY < NORMAL < LATE, then by ascending
//     priority (see Index).
//  3. Execution: each bucket's due steppers are snapshotted and run in
//     registration order. Steppers deregistered earlier in the frame are
//     skipped, as are steppers whose owner is no longer live.
//  4. Advance: steppers that ran restart at frequency-1, every other stepper
//     counts down by one. Nothing becomes due in the frame it counts down in.
//
// A stepper registered at tick T (between frames, or from inside a callback
// during frame T) therefore first runs at tick T+frequency+startDelay and then
// every frequency ticks until it is deregistered.
//
// # Partial Frames
//
// TickRange and TickSlot run only part of a frame. The commit happens once,
// when the first partial call opens the frame, and each bucket runs at most
// once per frame. EndFrame (or a final Tick, which runs whatever is left)
// performs the single advance phase.
//
// # Registration Policy
//
// PolicyNextTick (the default) never runs a stepper in the frame it was
// registered in. PolicyRunThisFrame runs zero-delay registrations made while
// a frame is open later in that frame if their bucket has not been passed yet.
//
// # Failures
//
// A callback error aborts the frame and halts the scheduler. Every later tick
// operation returns ErrHalted. Panics are not recovered.
package scheduler
