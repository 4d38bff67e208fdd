package core

import (
	"fmt"

	"github.com/hupe1980/stepmesh/internal/util"
)

// Callback is the opaque zero-argument action a stepper runs. A non-nil error
// is fatal for the tick in which it is returned.
type Callback func() error

// Do adapts a plain func() into a Callback that never fails.
func Do(fn func()) Callback {
	return func() error {
		fn()
		return nil
	}
}

// StepperOptions holds the optional construction parameters of a Stepper.
// Priority and Slot are pointers so "not given" can be told apart from zero.
type StepperOptions struct {
	Priority   *int
	Slot       *QueueSlot
	StartDelay int
	Name       string
}

// StepperOption mutates StepperOptions.
type StepperOption func(o *StepperOptions)

// WithPriority sets the fine-grained priority. Unless WithSlot is also given,
// the slot is derived from it.
func WithPriority(priority int) StepperOption {
	return func(o *StepperOptions) { o.Priority = &priority }
}

// WithSlot sets the queue slot. Unless WithPriority is also given, the slot's
// canonical priority is used.
func WithSlot(slot QueueSlot) StepperOption {
	return func(o *StepperOptions) { o.Slot = &slot }
}

// WithStartDelay postpones the first execution by delay ticks.
func WithStartDelay(delay int) StepperOption {
	return func(o *StepperOptions) { o.StartDelay = delay }
}

// WithName labels the stepper. Names need not be unique.
func WithName(name string) StepperOption {
	return func(o *StepperOptions) { o.Name = name }
}

// Stepper is a schedulable unit pairing a callback with frequency, priority
// and slot metadata. It is immutable after construction; the countdown until
// the next execution is owned by the scheduler.
type Stepper struct {
	id           string
	name         string
	frequency    int
	priority     int
	slot         QueueSlot
	startDelay   int
	owner        Owner
	callback     Callback
	creationTick uint64
}

// NewStepper validates its arguments and builds a Stepper.
func NewStepper(frequency int, callback Callback, owner Owner, creationTick uint64, opts ...StepperOption) (*Stepper, error) {
	o := StepperOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	if frequency <= 0 {
		return nil, fmt.Errorf("%w: frequency must be >= 1, got %d", ErrInvalidArgument, frequency)
	}
	if o.StartDelay < 0 {
		return nil, fmt.Errorf("%w: start delay must be >= 0, got %d", ErrInvalidArgument, o.StartDelay)
	}
	if callback == nil {
		return nil, fmt.Errorf("%w: callback is nil", ErrInvalidArgument)
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner is nil", ErrInvalidArgument)
	}
	if o.Slot != nil && !o.Slot.Valid() {
		return nil, fmt.Errorf("%w: unknown queue slot %d", ErrInvalidArgument, int(*o.Slot))
	}

	priority, slot := Canonicalize(o.Priority, o.Slot)

	id := util.NewID()
	name := o.Name
	if name == "" {
		name = id
	}

	return &Stepper{
		id:           id,
		name:         name,
		frequency:    frequency,
		priority:     priority,
		slot:         slot,
		startDelay:   o.StartDelay,
		owner:        owner,
		callback:     callback,
		creationTick: creationTick,
	}, nil
}

// ID returns the unique identifier of the stepper.
func (s *Stepper) ID() string { return s.id }

// Name returns the stepper name (the ID when no name was given).
func (s *Stepper) Name() string { return s.name }

// Frequency returns how often the stepper runs: every Frequency-th tick.
func (s *Stepper) Frequency() int { return s.frequency }

// Priority returns the fine-grained priority; lower runs earlier.
func (s *Stepper) Priority() int { return s.priority }

// Slot returns the queue slot.
func (s *Stepper) Slot() QueueSlot { return s.slot }

// StartDelay returns the number of extra ticks before the first execution.
func (s *Stepper) StartDelay() int { return s.startDelay }

// Owner returns the owner the stepper was registered for.
func (s *Stepper) Owner() Owner { return s.owner }

// CreationTick returns the scheduler tick at which the stepper was built.
func (s *Stepper) CreationTick() uint64 { return s.creationTick }

// Execute runs the callback if the owner is still live. It performs no
// frequency check; gating is the scheduler's job. The boolean reports whether
// the callback was invoked.
func (s *Stepper) Execute() (bool, error) {
	if !s.owner.IsLive() {
		return false, nil
	}
	return true, s.callback()
}

// String implements fmt.Stringer.
func (s *Stepper) String() string {
	return fmt.Sprintf("%s(%s/%d every %d)", s.name, s.slot, s.priority, s.frequency)
}

// Less orders steppers by priority only. Ties must be resolved by a stable
// sort so that insertion order survives.
func Less(a, b *Stepper) bool {
	return a.priority < b.priority
}

// Compare is the three-way form of Less for slices.SortStableFunc.
func Compare(a, b *Stepper) int {
	switch {
	case a.priority < b.priority:
		return -1
	case a.priority > b.priority:
		return 1
	default:
		return 0
	}
}
