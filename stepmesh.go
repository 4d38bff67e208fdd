// Package stepmesh provides a high-level façade over the scheduler, the owner
// registry and the frame driver, enabling rapid construction of agent-based
// simulations. Most applications interact with this package by:
//  1. Creating a StepMesh via New() (optionally overriding config, logger and event sink)
//  2. Creating agents with NewAgent and giving them steppers
//  3. Driving frames with Advance from a host loop, or Run with a driver.Source
//
// The façade delegates ordering to scheduler.Scheduler and frame guards to
// driver.Driver while keeping setup concise. All defaults are safe for local
// development and testing.
package stepmesh

import (
	"context"

	"github.com/hupe1980/stepmesh/agent"
	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/driver"
	"github.com/hupe1980/stepmesh/logging"
	"github.com/hupe1980/stepmesh/scheduler"
)

// Options configures the StepMesh instance.
type Options struct {
	// DriverConfig holds the frame guards, the ticker interval and the
	// scheduler registration policy. Defaults to driver.DefaultConfig.
	DriverConfig driver.Config

	// Sink receives scheduling events (e.g. a trace.InMemoryRecorder).
	// Nil disables event emission.
	Sink core.EventSink

	// Hooks are driver lifecycle hooks. Defaults to an empty manager.
	Hooks *driver.HookManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// StepMesh is the high-level façade aggregating scheduler, registry and driver.
type StepMesh struct {
	opts      Options
	scheduler *scheduler.Scheduler
	registry  *agent.Registry
	driver    *driver.Driver
}

// New creates a new StepMesh instance with optional overrides. It fails only
// when the driver config is invalid.
func New(optFns ...func(o *Options)) (*StepMesh, error) {
	opts := Options{
		DriverConfig: driver.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if err := opts.DriverConfig.Validate(); err != nil {
		return nil, err
	}

	policy, err := opts.DriverConfig.SchedulerPolicy()
	if err != nil {
		return nil, err
	}

	s := scheduler.New(func(o *scheduler.Options) {
		o.Policy = policy
		o.Logger = opts.Logger
		o.Sink = opts.Sink
	})

	d := driver.New(s, func(o *driver.Options) {
		o.Config = opts.DriverConfig
		o.Logger = opts.Logger
		o.Hooks = opts.Hooks
	})

	return &StepMesh{
		opts:      opts,
		scheduler: s,
		registry:  agent.NewRegistry(s),
		driver:    d,
	}, nil
}

// Load creates a StepMesh from a YAML driver config file. Option functions
// run after the file was applied.
func Load(path string, optFns ...func(o *Options)) (*StepMesh, error) {
	cfg, err := driver.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return New(append([]func(o *Options){func(o *Options) { o.DriverConfig = cfg }}, optFns...)...)
}

// Scheduler returns the underlying scheduler.
func (m *StepMesh) Scheduler() *scheduler.Scheduler { return m.scheduler }

// Registry returns the owner registry.
func (m *StepMesh) Registry() *agent.Registry { return m.registry }

// Driver returns the frame driver.
func (m *StepMesh) Driver() *driver.Driver { return m.driver }

// NewAgent creates a live agent bound to the scheduler and registered in the
// registry.
func (m *StepMesh) NewAgent(name string) *agent.BaseAgent {
	return agent.NewBaseAgent(name, m.scheduler, func(o *agent.Options) {
		o.Registry = m.registry
		o.Logger = m.opts.Logger
	})
}

// Advance runs one external frame through the driver.
func (m *StepMesh) Advance() error { return m.driver.Advance() }

// Run drives frames from src until the driver finished, a frame failed or ctx
// is done. A nil src runs a TickerSource at the configured frame interval.
func (m *StepMesh) Run(ctx context.Context, src driver.Source) error {
	if src == nil {
		src = driver.NewTickerSource(m.opts.DriverConfig.FrameInterval)
	}
	return m.driver.Run(ctx, src)
}
