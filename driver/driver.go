package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/logging"
	"github.com/hupe1980/stepmesh/scheduler"
)

// Options configures a Driver.
type Options struct {
	// Config contains the frame guards. Defaults to DefaultConfig.
	Config Config

	// Logger defaults to NoOp logger if nil. A *logging.StepMeshLogger also
	// receives per-tick and per-failure records.
	Logger logging.Logger

	// Hooks defaults to an empty manager.
	Hooks *HookManager
}

type tickLogger interface {
	LogTick(tick uint64, partial bool, dur time.Duration, err error)
	LogStepperFailure(stepper string, tick uint64, err error)
}

// Driver translates external frames into scheduler ticks. It owns no
// simulation state: every frame is delegated to the scheduler, guarded by the
// pause flag, the grace period and EndTick.
//
// A Driver shares the scheduler's threading model: call it from the goroutine
// that drives frames (usually through a Source), for example from a stepper
// callback or a hook. Paused, Frame and Stats are safe to call from any
// goroutine.
type Driver struct {
	scheduler core.Scheduler
	cfg       Config
	logger    logging.Logger
	hooks     *HookManager

	paused atomic.Bool
	stats  statsCollector

	// Frame state, only touched by the tick goroutine.
	inFrame  bool
	active   bool
	partial  bool
	running  bool
	frameNum uint64
	busy     time.Duration
	selected scheduler.Selection
}

var _ Advancer = (*Driver)(nil)

// New creates a driver for s with optional overrides.
func New(s core.Scheduler, optFns ...func(o *Options)) *Driver {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Hooks == nil {
		opts.Hooks = NewHookManager()
	}

	d := &Driver{
		scheduler: s,
		cfg:       opts.Config,
		logger:    opts.Logger,
		hooks:     opts.Hooks,
	}
	d.paused.Store(opts.Config.StartPaused)

	return d
}

// Config returns the driver configuration.
func (d *Driver) Config() Config { return d.cfg }

// Hooks returns the hook manager.
func (d *Driver) Hooks() *HookManager { return d.hooks }

// Advance runs one external frame: exactly one scheduler Tick unless the
// driver is paused, in its grace period or past EndTick. When a partial frame
// is open, Advance completes it instead.
func (d *Driver) Advance() error {
	return d.drive(false, d.scheduler.Tick, true)
}

// AdvanceRange executes the due buckets with a priority in [start, end] and
// leaves the frame open for further partial calls and EndFrame. A range that
// overlaps one already advanced in the open frame closes that frame and
// starts the next external frame.
func (d *Driver) AdvanceRange(start, end int) error {
	return d.drivePartial(start, end, func() error { return d.scheduler.TickRange(start, end) })
}

// AdvanceSlot executes the due buckets of slot and leaves the frame open for
// further partial calls and EndFrame. Advancing a slot again without EndFrame
// starts the next external frame, so a host may simply call AdvanceSlot for
// EARLY, NORMAL and LATE once per frame.
func (d *Driver) AdvanceSlot(slot core.QueueSlot) error {
	start, end := scheduler.SlotBand(slot)
	return d.drivePartial(start, end, func() error { return d.scheduler.TickSlot(slot) })
}

func (d *Driver) drivePartial(start, end int, step func() error) error {
	if d.running {
		return core.ErrReentrantTick
	}

	if d.inFrame && d.selected.Overlaps(start, end) {
		if err := d.EndFrame(); err != nil {
			return err
		}
	}

	if err := d.drive(true, step, false); err != nil {
		return err
	}

	if d.inFrame {
		d.selected.Add(start, end)
	}

	return nil
}

// EndFrame closes a frame opened by AdvanceRange or AdvanceSlot. Without an
// open frame it does nothing.
func (d *Driver) EndFrame() error {
	if !d.inFrame {
		return nil
	}
	return d.drive(true, d.scheduler.EndFrame, true)
}

func (d *Driver) drive(partial bool, step func() error, closes bool) error {
	if d.running {
		return core.ErrReentrantTick
	}

	if !d.inFrame {
		if err := d.open(partial); err != nil {
			return err
		}
	}

	if !d.active {
		if closes {
			d.inFrame = false
		}
		return nil
	}

	d.running = true
	start := time.Now()
	err := step()
	d.busy += time.Since(start)
	d.running = false

	if err != nil {
		return d.fail(err)
	}

	if closes {
		return d.close()
	}

	return nil
}

// open counts a new external frame and decides whether it reaches the
// scheduler.
func (d *Driver) open(partial bool) error {
	d.frameNum = d.stats.frame()
	d.inFrame = true
	d.partial = partial
	d.busy = 0
	d.active = false
	d.selected.Reset()

	switch {
	case d.Paused():
	case d.frameNum <= uint64(d.cfg.GraceFrames):
		d.logger.Debug("grace frame skipped", "frame", d.frameNum, "grace_frames", d.cfg.GraceFrames)
	case d.cfg.EndTick > 0 && d.scheduler.CurrentTick() >= d.cfg.EndTick && !d.scheduler.FrameOpen():
		d.logger.Info("end tick reached, pausing", "tick", d.scheduler.CurrentTick(), "end_tick", d.cfg.EndTick)
		d.pause("end_tick")
	default:
		d.active = true
	}

	if !d.active {
		d.stats.skip()
		return nil
	}

	hc := d.hookContext(HookBeforeTick)
	if err := d.hooks.Execute(hc); err != nil {
		d.stats.skip()
		d.inFrame, d.active = false, false
		return err
	}

	return nil
}

func (d *Driver) close() error {
	dur := d.busy
	d.stats.tick(dur, false)
	d.inFrame, d.active = false, false

	if tl, ok := d.logger.(tickLogger); ok {
		tl.LogTick(d.scheduler.CurrentTick(), d.partial, dur, nil)
	}

	hc := d.hookContext(HookAfterTick)
	hc.Duration = dur
	return d.hooks.Execute(hc)
}

// fail handles a scheduler error. A callback failure halts the scheduler, so
// the frame is counted and closed here. Argument errors leave an open frame
// untouched.
func (d *Driver) fail(err error) error {
	dur := d.busy

	var stepErr *core.StepperError
	switch {
	case errors.Is(err, core.ErrHalted):
		d.stats.failure()
		d.inFrame, d.active = false, false
	case errors.As(err, &stepErr):
		d.stats.tick(dur, true)
		d.inFrame, d.active = false, false
		if tl, ok := d.logger.(tickLogger); ok {
			tl.LogStepperFailure(stepErr.Name, stepErr.Tick, stepErr.Err)
			tl.LogTick(d.scheduler.CurrentTick(), d.partial, dur, err)
		}
	case !d.scheduler.FrameOpen():
		d.inFrame, d.active = false, false
	}

	hc := d.hookContext(HookOnError)
	hc.Duration = dur
	hc.Err = err
	if hookErr := d.hooks.Execute(hc); hookErr != nil {
		return errors.Join(err, hookErr)
	}

	return err
}

func (d *Driver) hookContext(t HookType) *HookContext {
	return &HookContext{
		Type:    t,
		Frame:   d.frameNum,
		Tick:    d.scheduler.CurrentTick(),
		Partial: d.partial,
	}
}

// Run drives the scheduler from src until it finishes, fails or ctx is done.
func (d *Driver) Run(ctx context.Context, src Source) error {
	return src.Run(ctx, d)
}

// Pause makes the driver ignore frames until Resume. A frame that is already
// open keeps running until it is closed.
func (d *Driver) Pause() { d.pause("manual") }

func (d *Driver) pause(reason string) {
	if !d.paused.CompareAndSwap(false, true) {
		return
	}

	d.logger.Info("driver paused", "reason", reason, "tick", d.scheduler.CurrentTick())

	hc := d.hookContext(HookOnPause)
	hc.Reason = reason
	if err := d.hooks.Execute(hc); err != nil {
		d.logger.Warn("pause hook failed", "error", err)
	}
}

// Resume lets frames through again.
func (d *Driver) Resume() {
	if d.paused.CompareAndSwap(true, false) {
		d.logger.Info("driver resumed", "tick", d.scheduler.CurrentTick())
	}
}

// Paused reports whether the driver ignores frames.
func (d *Driver) Paused() bool { return d.paused.Load() }

// Frame returns the number of external frames observed so far.
func (d *Driver) Frame() uint64 { return d.stats.snapshot().Frames }

// Stats returns a snapshot of the frame counters and tick timing.
func (d *Driver) Stats() Stats { return d.stats.snapshot() }

// Finished reports whether the driver will not tick again on its own: EndTick
// was reached with no frame open, or the scheduler halted after a failure.
func (d *Driver) Finished() bool {
	if h, ok := d.scheduler.(interface{ Err() error }); ok && h.Err() != nil {
		return true
	}
	return d.cfg.EndTick > 0 && d.scheduler.CurrentTick() >= d.cfg.EndTick && !d.scheduler.FrameOpen()
}
