package scheduler

import (
	"fmt"
	"strings"

	"github.com/hupe1980/stepmesh/core"
)

// Policy decides when a stepper registered during a tick may first run.
type Policy int

const (
	// PolicyNextTick defers every registration to the next commit phase. A
	// stepper registered in tick T first runs at tick T+frequency+startDelay.
	PolicyNextTick Policy = iota

	// PolicyRunThisFrame additionally runs a zero-delay stepper registered
	// while a frame is open in that same frame, provided its (slot, priority)
	// key has not been reached yet. It is still committed at the next frame
	// like any other registration.
	PolicyRunThisFrame
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyNextTick:
		return "next_tick"
	case PolicyRunThisFrame:
		return "run_this_frame"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration name into a Policy. The empty string
// selects PolicyNextTick.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "next_tick":
		return PolicyNextTick, nil
	case "run_this_frame":
		return PolicyRunThisFrame, nil
	default:
		return PolicyNextTick, fmt.Errorf("%w: unknown registration policy %q", core.ErrInvalidArgument, name)
	}
}
