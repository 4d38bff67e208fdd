package testutil

import (
	"errors"

	"github.com/hupe1980/stepmesh/core"
)

// Call is one recorded callback execution.
type Call struct {
	Name string
	Tick uint64
}

// Probe records the global execution order of callbacks. The clock reports
// the tick each call happened in (usually Scheduler.CurrentTick).
//
// Example:
//
//	p := testutil.NewProbe(s.CurrentTick)
//	s.Register(1, p.Callback("A"), owner)
type Probe struct {
	clock func() uint64
	calls []Call
}

// NewProbe creates an empty probe.
func NewProbe(clock func() uint64) *Probe {
	return &Probe{clock: clock}
}

// Callback returns a callback that records name.
func (p *Probe) Callback(name string) core.Callback {
	return p.Then(name, func() {})
}

// Then returns a callback that records name and then runs fn.
func (p *Probe) Then(name string, fn func()) core.Callback {
	return func() error {
		p.calls = append(p.calls, Call{Name: name, Tick: p.clock()})
		fn()
		return nil
	}
}

// Failing returns a callback that records name and returns err.
func (p *Probe) Failing(name string, err error) core.Callback {
	if err == nil {
		err = errors.New("callback failed")
	}
	return func() error {
		p.calls = append(p.calls, Call{Name: name, Tick: p.clock()})
		return err
	}
}

// Calls returns every recorded call in execution order.
func (p *Probe) Calls() []Call { return append([]Call(nil), p.calls...) }

// Names returns the recorded names in execution order.
func (p *Probe) Names() []string {
	out := make([]string, 0, len(p.calls))
	for _, c := range p.calls {
		out = append(out, c.Name)
	}
	return out
}

// NamesAt returns the names recorded during tick, in execution order.
func (p *Probe) NamesAt(tick uint64) []string {
	var out []string
	for _, c := range p.calls {
		if c.Tick == tick {
			out = append(out, c.Name)
		}
	}
	return out
}

// TicksOf returns the ticks in which name ran.
func (p *Probe) TicksOf(name string) []uint64 {
	var out []uint64
	for _, c := range p.calls {
		if c.Name == name {
			out = append(out, c.Tick)
		}
	}
	return out
}

// Reset forgets every recorded call.
func (p *Probe) Reset() { p.calls = nil }
