package scheduler

import (
	"fmt"
	"slices"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/logging"
)

// Options configures a Scheduler.
type Options struct {
	// Policy decides whether steppers registered mid-frame may run in that
	// frame. Defaults to PolicyNextTick.
	Policy Policy

	// Logger receives commit summaries at debug level and callback failures
	// at error level. Defaults to NoOp logger if nil.
	Logger logging.Logger

	// Sink receives one event per registration, commit, execution, skip,
	// deregistration and frame boundary. Defaults to core.NoOpSink if nil.
	Sink core.EventSink
}

// frameState is the bookkeeping of the frame currently open, if any.
type frameState struct {
	open      bool
	keys      []Key            // ordering snapshot taken at commit
	done      map[Key]struct{} // buckets already executed in this frame
	scan      int              // keys[:scan] are all done
	cursor    Key              // highest key executed so far
	started   bool             // cursor is meaningful
	immediate []*core.Stepper  // run-this-frame registrations not yet run
	selected  Selection        // bands of the partial calls made so far
	executed  int
}

// Scheduler owns the pending table and runs due steppers in slot, priority
// and registration order.
//
// Register and Deregister only buffer requests. The buffers are applied by the
// commit phase that opens the next frame, so the table is never mutated while
// a bucket is being iterated. Deregistration also takes effect immediately for
// execution purposes: a stepper deregistered earlier in the same frame is
// skipped when its bucket comes up.
//
// A Scheduler is single-threaded. It must be driven from one goroutine and its
// methods must not be called concurrently.
type Scheduler struct {
	policy Policy
	logger logging.Logger
	sink   core.EventSink
	quiet  bool // sink discards everything, so events are not built

	tick  uint64
	table *table

	created      []*core.Stepper
	destroyed    []*core.Stepper
	destroyedSet map[*core.Stepper]struct{}

	// Registered and not yet deregistered steppers per owner, in
	// registration order. Used by the per-owner queries.
	live map[core.Owner][]*core.Stepper

	frame   frameState
	running bool
	haltErr error
}

var _ core.Scheduler = (*Scheduler)(nil)

// New creates a Scheduler with optional overrides.
func New(optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Policy: PolicyNextTick,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Sink == nil {
		opts.Sink = core.NoOpSink{}
	}

	return &Scheduler{
		policy:       opts.Policy,
		logger:       opts.Logger,
		sink:         opts.Sink,
		quiet:        isNoOpSink(opts.Sink),
		table:        newTable(),
		destroyedSet: make(map[*core.Stepper]struct{}),
		live:         make(map[core.Owner][]*core.Stepper),
	}
}

// Register builds a stepper and buffers it for the next commit phase. It is
// safe to call from inside a stepper callback.
func (s *Scheduler) Register(frequency int, callback core.Callback, owner core.Owner, opts ...core.StepperOption) (*core.Stepper, error) {
	st, err := core.NewStepper(frequency, callback, owner, s.tick, opts...)
	if err != nil {
		return nil, err
	}

	if !owner.IsLive() {
		return nil, fmt.Errorf("%w: cannot register stepper %q", core.ErrOwnerNotLive, st.Name())
	}

	s.created = append(s.created, st)
	s.live[owner] = append(s.live[owner], st)

	if s.eligibleThisFrame(st) {
		s.frame.immediate = append(s.frame.immediate, st)
	}

	s.emit(core.EventRegistered, st, "")

	return st, nil
}

func (s *Scheduler) eligibleThisFrame(st *core.Stepper) bool {
	if s.policy != PolicyRunThisFrame || !s.frame.open || st.StartDelay() != 0 {
		return false
	}
	return !s.frame.started || s.frame.cursor.Less(KeyOf(st))
}

// Deregister buffers the removal of st. Unknown or already deregistered
// steppers are ignored. It is safe to call from inside a stepper callback,
// including the callback of st itself.
func (s *Scheduler) Deregister(st *core.Stepper) {
	if st == nil {
		return
	}

	owned := s.live[st.Owner()]
	i := slices.Index(owned, st)
	if i < 0 {
		return
	}

	if len(owned) == 1 {
		delete(s.live, st.Owner())
	} else {
		s.live[st.Owner()] = slices.Delete(owned, i, i+1)
	}

	s.destroyed = append(s.destroyed, st)
	s.destroyedSet[st] = struct{}{}
}

// Tick runs one complete frame: commit, execution of every due bucket not yet
// executed in this frame, and the advance phase. When a partial frame is
// open, Tick completes it instead of starting a new one.
func (s *Scheduler) Tick() error {
	if err := s.run(func(Key) bool { return true }); err != nil {
		return err
	}
	return s.EndFrame()
}

// TickRange executes only the due buckets whose priority lies in
// [start, end]. The frame stays open until EndFrame or Tick. When the range
// overlaps a partial call already made in the open frame, that frame is
// closed first and the range runs in a new one.
func (s *Scheduler) TickRange(start, end int) error {
	if start > end {
		return fmt.Errorf("%w: empty priority range [%d, %d]", core.ErrInvalidArgument, start, end)
	}
	return s.partial(start, end, func(k Key) bool { return k.Priority >= start && k.Priority <= end })
}

// TickSlot executes only the due buckets of slot. The frame stays open until
// EndFrame or Tick. Calling it again for a slot whose priority band was
// already covered in the open frame starts a new frame, so EARLY, NORMAL,
// LATE repeated without EndFrame yields one tick per round.
func (s *Scheduler) TickSlot(slot core.QueueSlot) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: unknown queue slot %d", core.ErrInvalidArgument, int(slot))
	}
	start, end := SlotBand(slot)
	return s.partial(start, end, func(k Key) bool { return k.Slot == slot })
}

func (s *Scheduler) partial(start, end int, match func(Key) bool) error {
	if s.frame.open && !s.running && s.frame.selected.Overlaps(start, end) {
		if err := s.EndFrame(); err != nil {
			return err
		}
	}

	if err := s.run(match); err != nil {
		return err
	}

	s.frame.selected.Add(start, end)

	return nil
}

// EndFrame runs the advance phase of the open frame and closes it. Buckets
// that were not executed keep their due steppers due for the next frame.
// Without an open frame EndFrame does nothing.
func (s *Scheduler) EndFrame() error {
	if err := s.halted(); err != nil {
		return err
	}
	if s.running {
		return core.ErrReentrantTick
	}
	if !s.frame.open {
		return nil
	}

	s.table.advance()

	s.logger.Debug("frame closed", "tick", s.tick, "executed", s.frame.executed, "pending", s.table.len())
	s.record(core.EventFrameClosed)

	s.frame = frameState{}

	return nil
}

func (s *Scheduler) run(match func(Key) bool) error {
	if err := s.halted(); err != nil {
		return err
	}
	if s.running {
		return core.ErrReentrantTick
	}

	s.running = true
	defer func() { s.running = false }()

	if !s.frame.open {
		s.commit()
	}

	for {
		k, ok := s.nextKey(match)
		if !ok {
			return nil
		}
		if err := s.runKey(k); err != nil {
			s.haltErr = err
			s.logger.Error("stepper callback failed, scheduler halted", "tick", s.tick, "error", err)
			return err
		}
	}
}

// commit opens a new frame: buffered registrations enter the pending table,
// buffered deregistrations leave it, and the ordering is snapshotted.
func (s *Scheduler) commit() {
	s.tick++

	created, destroyed := s.created, s.destroyed
	s.created, s.destroyed = nil, nil

	committed := 0
	for _, st := range created {
		if _, gone := s.destroyedSet[st]; gone {
			continue
		}
		if s.table.insert(st, st.Frequency()-1+st.StartDelay()) {
			committed++
			s.emit(core.EventCommitted, st, "")
		}
	}

	for _, st := range destroyed {
		s.table.remove(st)
		s.emit(core.EventDeregistered, st, "")
	}

	clear(s.destroyedSet)

	s.frame = frameState{
		open: true,
		keys: s.table.index.Keys(),
		done: make(map[Key]struct{}),
	}

	s.logger.Debug("frame committed", "tick", s.tick, "created", committed, "destroyed", len(destroyed), "buckets", len(s.frame.keys))
	s.record(core.EventFrameOpened)
}

// nextKey returns the lowest key that matches and has not run in this frame,
// considering both committed buckets and run-this-frame registrations.
func (s *Scheduler) nextKey(match func(Key) bool) (Key, bool) {
	f := &s.frame

	for f.scan < len(f.keys) {
		if _, done := f.done[f.keys[f.scan]]; !done {
			break
		}
		f.scan++
	}

	var best Key
	found := false

	for _, k := range f.keys[f.scan:] {
		if _, done := f.done[k]; done || !match(k) {
			continue
		}
		best, found = k, true
		break
	}

	for _, st := range f.immediate {
		k := KeyOf(st)
		if _, done := f.done[k]; done || !match(k) {
			continue
		}
		if !found || k.Less(best) {
			best, found = k, true
		}
	}

	return best, found
}

// runKey executes bucket k: committed due steppers first, in registration
// order, then run-this-frame registrations with the same key.
func (s *Scheduler) runKey(k Key) error {
	f := &s.frame
	f.done[k] = struct{}{}
	if !f.started || f.cursor.Less(k) {
		f.cursor, f.started = k, true
	}

	for _, e := range s.table.due(k) {
		e.fired = true
		if err := s.execute(e.stepper); err != nil {
			return err
		}
	}

	var now, later []*core.Stepper
	for _, st := range f.immediate {
		if KeyOf(st) == k {
			now = append(now, st)
		} else {
			later = append(later, st)
		}
	}
	f.immediate = later

	for _, st := range now {
		if err := s.execute(st); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scheduler) execute(st *core.Stepper) error {
	if _, gone := s.destroyedSet[st]; gone {
		s.emit(core.EventSkipped, st, "deregistered")
		return nil
	}

	ran, err := st.Execute()
	if err != nil {
		s.emit(core.EventFailed, st, err.Error())
		return &core.StepperError{
			StepperID: st.ID(),
			Name:      st.Name(),
			Tick:      s.tick,
			Slot:      st.Slot(),
			Priority:  st.Priority(),
			Err:       err,
		}
	}

	if !ran {
		s.emit(core.EventSkipped, st, "owner not live")
		return nil
	}

	s.frame.executed++
	s.emit(core.EventExecuted, st, "")

	return nil
}

func (s *Scheduler) halted() error {
	if s.haltErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", core.ErrHalted, s.haltErr)
}

func (s *Scheduler) emit(kind core.EventKind, st *core.Stepper, reason string) {
	if s.quiet {
		return
	}
	ev := core.NewStepperEvent(kind, s.tick, st)
	ev.Reason = reason
	s.sink.Record(ev)
}

func (s *Scheduler) record(kind core.EventKind) {
	if s.quiet {
		return
	}
	s.sink.Record(core.NewEvent(kind, s.tick))
}

func isNoOpSink(sink core.EventSink) bool {
	switch sink.(type) {
	case core.NoOpSink, *core.NoOpSink:
		return true
	default:
		return false
	}
}

// HasStepperInPriorityRange reports whether owner has a registered, not
// deregistered stepper with a priority in [start, end].
func (s *Scheduler) HasStepperInPriorityRange(owner core.Owner, start, end int) bool {
	for _, st := range s.live[owner] {
		if st.Priority() >= start && st.Priority() <= end {
			return true
		}
	}
	return false
}

// HasStepperInSlot reports whether owner has a registered, not deregistered
// stepper in slot.
func (s *Scheduler) HasStepperInSlot(owner core.Owner, slot core.QueueSlot) bool {
	for _, st := range s.live[owner] {
		if st.Slot() == slot {
			return true
		}
	}
	return false
}

// Steppers returns the registered steppers of owner, sorted by priority with
// ties in registration order.
func (s *Scheduler) Steppers(owner core.Owner) []*core.Stepper {
	out := slices.Clone(s.live[owner])
	slices.SortStableFunc(out, core.Compare)
	return out
}

// Remaining returns the countdown of a committed stepper: 0 means due in the
// current (or next, between frames) tick.
func (s *Scheduler) Remaining(st *core.Stepper) (int, bool) {
	e, ok := s.table.lookup(st)
	if !ok {
		return 0, false
	}
	return e.remaining, true
}

// ActiveQueueSlots returns the slots in use by committed steppers.
func (s *Scheduler) ActiveQueueSlots() []core.QueueSlot { return s.table.index.ActiveQueueSlots() }

// ActivePriorities returns the priorities in use by committed steppers in slot.
func (s *Scheduler) ActivePriorities(slot core.QueueSlot) []int {
	return s.table.index.ActivePriorities(slot)
}

// CurrentTick returns the number of frames opened so far.
func (s *Scheduler) CurrentTick() uint64 { return s.tick }

// FrameOpen reports whether a frame has been opened and not yet closed.
func (s *Scheduler) FrameOpen() bool { return s.frame.open }

// Len returns the number of committed steppers.
func (s *Scheduler) Len() int { return s.table.len() }

// Buffered returns the number of registrations waiting for the next commit.
func (s *Scheduler) Buffered() int { return len(s.created) }

// Policy returns the registration policy.
func (s *Scheduler) Policy() Policy { return s.policy }

// SetPolicy changes the registration policy between frames.
func (s *Scheduler) SetPolicy(p Policy) error {
	if s.frame.open {
		return core.ErrFrameOpen
	}
	s.policy = p
	return nil
}

// Err returns the callback failure that halted the scheduler, if any.
func (s *Scheduler) Err() error { return s.haltErr }
