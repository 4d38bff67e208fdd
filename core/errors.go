package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller violates a registration
	// contract (non-positive frequency, negative delay, nil callback or owner).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOwnerNotLive is returned when registering a stepper for an owner that
	// has already been torn down.
	ErrOwnerNotLive = errors.New("owner is not live")

	// ErrHalted is returned by every tick operation after a callback failed.
	// Partially executed frames have no consistent recovery point.
	ErrHalted = errors.New("scheduler halted")

	// ErrReentrantTick is returned when a stepper callback tries to drive the
	// scheduler it is running in.
	ErrReentrantTick = errors.New("tick called from inside a stepper callback")

	// ErrFrameOpen is returned by operations that must not run while a
	// partial frame is still open.
	ErrFrameOpen = errors.New("frame is open")
)

// StepperError describes a callback failure. It carries enough of the stepper
// identity to locate the failing behavior without holding the stepper itself.
type StepperError struct {
	StepperID string    // ID of the failing stepper
	Name      string    // Name of the failing stepper
	Tick      uint64    // Tick in which the failure happened
	Slot      QueueSlot // Slot of the failing stepper
	Priority  int       // Priority of the failing stepper
	Err       error     // Error returned by the callback
}

// Error implements the error interface for StepperError.
func (e *StepperError) Error() string {
	return fmt.Sprintf("stepper %q failed at tick %d (%s/%d): %v", e.Name, e.Tick, e.Slot, e.Priority, e.Err)
}

// Unwrap returns the callback error.
func (e *StepperError) Unwrap() error { return e.Err }
