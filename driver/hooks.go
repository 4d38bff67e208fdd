package driver

import (
	"time"

	"github.com/hupe1980/stepmesh/logging"
)

// HookType defines the points in a driver frame where hooks run.
//
// Hooks are executed synchronously on the tick goroutine. They can inspect
// the frame, collect metrics or veto a frame by returning an error from a
// HookBeforeTick hook.
type HookType string

const (
	// HookBeforeTick runs after the frame guards passed and before the
	// scheduler opens the frame. An error abandons the frame.
	HookBeforeTick HookType = "before_tick"

	// HookAfterTick runs after the scheduler closed the frame successfully.
	HookAfterTick HookType = "after_tick"

	// HookOnError runs when the scheduler returned an error for the frame.
	HookOnError HookType = "on_error"

	// HookOnPause runs when the driver pauses, manually or because EndTick
	// was reached.
	HookOnPause HookType = "on_pause"
)

// HookContext describes the frame a hook runs for.
type HookContext struct {
	// Type indicates which hook point triggered this execution.
	Type HookType

	// Frame is the external frame number, counting from 1.
	Frame uint64

	// Tick is the scheduler tick at the time of the hook. Before a tick it
	// is the last completed tick.
	Tick uint64

	// Partial is set when the frame was driven by AdvanceRange/AdvanceSlot.
	Partial bool

	// Duration is the time spent in the scheduler during this frame. Zero
	// for HookBeforeTick.
	Duration time.Duration

	// Err is the scheduler error for HookOnError.
	Err error

	// Reason explains a pause ("manual" or "end_tick").
	Reason string
}

// Hook is a driver lifecycle hook.
type Hook interface {
	// Type returns the hook point this implementation handles.
	Type() HookType

	// Execute performs the hook logic. Returning an error from a
	// HookBeforeTick hook abandons the frame; errors from other hook points
	// are returned to the caller of Advance after the frame completed.
	Execute(hc *HookContext) error
}

// FunctionHook wraps a function as a hook implementation.
//
// Example:
//
//	h := NewFunctionHook(HookAfterTick, func(hc *HookContext) error {
//	    fmt.Println("tick", hc.Tick, "took", hc.Duration)
//	    return nil
//	})
type FunctionHook struct {
	hookType HookType
	fn       func(hc *HookContext) error
}

// NewFunctionHook creates a new function-based hook.
func NewFunctionHook(hookType HookType, fn func(hc *HookContext) error) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

// Type returns the hook point this function handles.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(hc *HookContext) error { return h.fn(hc) }

// HookManager keeps hooks per type and executes them in registration order.
// The first failing hook stops the remaining hooks of that type.
//
// HookManager is not safe for concurrent registration. Register every hook
// before the driver starts.
type HookManager struct {
	hooks map[HookType][]Hook
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: make(map[HookType][]Hook)}
}

// Register adds a hook for its type.
func (hm *HookManager) Register(h Hook) {
	hm.hooks[h.Type()] = append(hm.hooks[h.Type()], h)
}

// Len returns the number of hooks registered for hookType.
func (hm *HookManager) Len(hookType HookType) int { return len(hm.hooks[hookType]) }

// Execute runs every hook registered for hc.Type.
func (hm *HookManager) Execute(hc *HookContext) error {
	for _, h := range hm.hooks[hc.Type] {
		if err := h.Execute(hc); err != nil {
			return err
		}
	}
	return nil
}

// LoggingHook forwards hook contexts to a logger.
type LoggingHook struct {
	hookType HookType
	logger   logging.Logger
}

// NewLoggingHook creates a hook that logs every hc of the given type at
// debug level, and HookOnError at error level.
func NewLoggingHook(hookType HookType, logger logging.Logger) *LoggingHook {
	return &LoggingHook{hookType: hookType, logger: logger}
}

// Type returns the hook point this logger handles.
func (h *LoggingHook) Type() HookType { return h.hookType }

// Execute logs the hook context.
func (h *LoggingHook) Execute(hc *HookContext) error {
	if h.logger == nil {
		return nil
	}
	args := []any{"hook", string(hc.Type), "frame", hc.Frame, "tick", hc.Tick, "partial", hc.Partial, "duration", hc.Duration}
	if hc.Err != nil {
		h.logger.Error("driver hook", append(args, "error", hc.Err)...)
		return nil
	}
	if hc.Reason != "" {
		args = append(args, "reason", hc.Reason)
	}
	h.logger.Debug("driver hook", args...)
	return nil
}
