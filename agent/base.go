package agent

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/internal/util"
	"github.com/hupe1980/stepmesh/logging"
)

// Options configures a BaseAgent.
type Options struct {
	// Registry, if set, receives the agent on construction and loses it on
	// Destroy.
	Registry *Registry

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// BaseAgent bundles stepper bookkeeping, liveness and hierarchy management for
// a simulation agent. Embed a *BaseAgent in concrete agents and create
// steppers from their constructors:
//
//	type Sheep struct {
//		*agent.BaseAgent
//		energy int
//	}
//
//	func NewSheep(s core.StepperRegistrar) (*Sheep, error) {
//		sh := &Sheep{BaseAgent: agent.NewBaseAgent("sheep", s)}
//		_, err := sh.CreateStepper(1, core.Do(sh.graze), core.WithPriority(105))
//		return sh, err
//	}
//
// The *BaseAgent pointer is the core.Owner the scheduler sees. All exported
// methods are goroutine-safe, but the scheduler they talk to is not, so in
// practice they are called from the tick goroutine.
type BaseAgent struct {
	id        string
	name      string
	scheduler core.StepperRegistrar
	registry  *Registry
	logger    logging.Logger

	live atomic.Bool

	mu        sync.Mutex
	steppers  []*core.Stepper // sorted by priority, ties in creation order
	parent    *BaseAgent
	subAgents []*BaseAgent
}

var (
	_ core.Owner = (*BaseAgent)(nil)
	_ core.Named = (*BaseAgent)(nil)
)

// NewBaseAgent creates a live agent bound to a scheduler.
func NewBaseAgent(name string, scheduler core.StepperRegistrar, optFns ...func(o *Options)) *BaseAgent {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	b := &BaseAgent{
		id:        util.NewID(),
		name:      name,
		scheduler: scheduler,
		registry:  opts.Registry,
		logger:    opts.Logger,
	}
	b.live.Store(true)

	if b.registry != nil {
		b.registry.RegisterOwner(b)
	}

	return b
}

// ID returns the unique identifier of the agent.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the human-readable name of the agent.
func (b *BaseAgent) Name() string { return b.name }

// IsLive reports whether Destroy has not been called yet.
func (b *BaseAgent) IsLive() bool { return b.live.Load() }

// CreateStepperEveryTick registers a callback that runs every tick. Without
// options the stepper lands in the NORMAL slot at priority 500 with no start
// delay.
func (b *BaseAgent) CreateStepperEveryTick(callback core.Callback, opts ...core.StepperOption) (*core.Stepper, error) {
	return b.CreateStepper(1, callback, opts...)
}

// CreateStepper registers a callback for this agent that runs every
// frequency-th tick. A frequency below 1 is rejected with
// core.ErrInvalidArgument.
func (b *BaseAgent) CreateStepper(frequency int, callback core.Callback, opts ...core.StepperOption) (*core.Stepper, error) {
	st, err := b.scheduler.Register(frequency, callback, b, opts...)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", b.name, err)
	}

	b.mu.Lock()
	i, _ := slices.BinarySearchFunc(b.steppers, st.Priority(), func(e *core.Stepper, p int) int {
		if e.Priority() <= p {
			return -1
		}
		return 1
	})
	b.steppers = slices.Insert(b.steppers, i, st)
	b.mu.Unlock()

	return st, nil
}

// DestroyStepper deregisters st if it belongs to this agent. It reports
// whether the stepper was found.
func (b *BaseAgent) DestroyStepper(st *core.Stepper) bool {
	b.mu.Lock()
	i := slices.Index(b.steppers, st)
	if i < 0 {
		b.mu.Unlock()
		return false
	}
	b.steppers = slices.Delete(b.steppers, i, i+1)
	b.mu.Unlock()

	b.scheduler.Deregister(st)

	return true
}

// DestroyStepperByName deregisters every stepper of this agent with the given
// name and returns how many were removed.
func (b *BaseAgent) DestroyStepperByName(name string) int {
	b.mu.Lock()
	var removed []*core.Stepper
	b.steppers = slices.DeleteFunc(b.steppers, func(st *core.Stepper) bool {
		if st.Name() == name {
			removed = append(removed, st)
			return true
		}
		return false
	})
	b.mu.Unlock()

	for _, st := range removed {
		b.scheduler.Deregister(st)
	}

	return len(removed)
}

// Steppers returns a copy of the agent's steppers sorted by priority, ties in
// creation order.
func (b *BaseAgent) Steppers() []*core.Stepper {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.steppers)
}

// HasSteppersInPriorityRange reports whether the agent owns a stepper with a
// priority in [start, end].
func (b *BaseAgent) HasSteppersInPriorityRange(start, end int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.ContainsFunc(b.steppers, func(st *core.Stepper) bool {
		return st.Priority() >= start && st.Priority() <= end
	})
}

// Destroy tears the agent down: it stops being live, every stepper is
// deregistered, sub-agents are destroyed too and the agent leaves its
// registry. Steppers already due in the current tick are skipped. Calling
// Destroy more than once has no effect.
func (b *BaseAgent) Destroy() {
	if !b.live.CompareAndSwap(true, false) {
		return
	}

	b.mu.Lock()
	steppers := b.steppers
	b.steppers = nil
	children := b.subAgents
	b.subAgents = nil
	parent := b.parent
	b.parent = nil
	b.mu.Unlock()

	for _, st := range steppers {
		b.scheduler.Deregister(st)
	}

	for _, child := range children {
		child.Destroy()
	}

	if parent != nil {
		parent.removeChild(b)
	}

	if b.registry != nil {
		b.registry.DeregisterOwner(b)
	}

	b.logger.Debug("agent destroyed", "agent", b.name, "id", b.id, "steppers", len(steppers))
}

// Agent Hierarchy Management
//
// Agents can own sub-agents (a flock owning its boids, a patch owning its
// sugar). Destroying a parent destroys the whole subtree.

// AddSubAgent attaches child to this agent. A child has at most one parent;
// attaching it elsewhere detaches it from its previous parent.
func (b *BaseAgent) AddSubAgent(child *BaseAgent) error {
	if child == nil || child == b {
		return fmt.Errorf("%w: invalid sub-agent", core.ErrInvalidArgument)
	}
	if !b.IsLive() || !child.IsLive() {
		return fmt.Errorf("%w: cannot attach %q to %q", core.ErrOwnerNotLive, child.name, b.name)
	}
	for p := b; p != nil; p = p.Parent() {
		if p == child {
			return errors.New("sub-agent would create a cycle")
		}
	}

	if old := child.Parent(); old != nil {
		old.removeChild(child)
	}

	child.mu.Lock()
	child.parent = b
	child.mu.Unlock()

	b.mu.Lock()
	b.subAgents = append(b.subAgents, child)
	b.mu.Unlock()

	return nil
}

func (b *BaseAgent) removeChild(child *BaseAgent) {
	b.mu.Lock()
	b.subAgents = slices.DeleteFunc(b.subAgents, func(c *BaseAgent) bool { return c == child })
	b.mu.Unlock()

	child.mu.Lock()
	if child.parent == b {
		child.parent = nil
	}
	child.mu.Unlock()
}

// Parent returns the parent agent or nil if this agent is a root.
func (b *BaseAgent) Parent() *BaseAgent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parent
}

// SubAgents returns a shallow copy of the current child agents.
func (b *BaseAgent) SubAgents() []*BaseAgent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.subAgents)
}

// FindAgent performs a depth-first search over the subtree rooted at this
// agent (including itself) returning the first agent whose Name matches.
// Returns nil if no match is found.
func (b *BaseAgent) FindAgent(name string) *BaseAgent {
	if b.name == name {
		return b
	}
	for _, child := range b.SubAgents() {
		if found := child.FindAgent(name); found != nil {
			return found
		}
	}
	return nil
}
