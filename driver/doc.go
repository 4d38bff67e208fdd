// Package driver connects an external frame source to a stepmesh scheduler.
//
// The scheduler never drives itself. A host loop (a game engine frame
// callback, a TickerSource, or a LoopSource for batch runs) calls
// Driver.Advance once per external frame, and the driver turns that into at
// most one scheduler tick.
//
// # Frame Guards
//
// Before a frame reaches the scheduler the driver checks, in order:
//
//   - the pause flag (Pause/Resume, or Config.StartPaused);
//   - the grace period: the first Config.GraceFrames frames are counted but
//     not ticked;
//   - Config.EndTick: once the scheduler completed that many ticks the driver
//     pauses itself and Finished reports true.
//
// # Partial Frames
//
// Hosts that interleave their own work with the simulation can split a frame
// with AdvanceSlot/AdvanceRange and close it with EndFrame:
//
//	d.AdvanceSlot(core.SlotEarly)
//	physics.Step()
//	d.AdvanceSlot(core.SlotNormal)
//	d.AdvanceSlot(core.SlotLate)
//	d.EndFrame()
//
// The guards are evaluated once, when the frame is opened.
//
// # Hooks
//
// A HookManager runs HookBeforeTick, HookAfterTick, HookOnError and
// HookOnPause hooks synchronously on the tick goroutine.
//
// # Configuration
//
// Config can be built in code starting from DefaultConfig or loaded from YAML
// with LoadConfig/ParseConfig.
package driver
