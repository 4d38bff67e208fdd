// Package agent contains the owner side of stepmesh: an embeddable BaseAgent
// that creates and destroys its own steppers, and a Registry of the owners
// currently taking part in a simulation. The package focuses on three
// concerns:
//
//  1. Stepper bookkeeping per agent (CreateStepper, DestroyStepper, Steppers)
//  2. Lifecycle (IsLive, Destroy deregistering everything the agent owns)
//  3. Membership queries (Registry.OwnersInSlot, OwnersInPriorityRange)
//
// Execution Model:
//   - Agents only talk to a core.StepperRegistrar; registrations are buffered
//     by the scheduler and take effect at its next commit
//   - Destroy is safe from inside a stepper callback, including one of the
//     agent's own steppers; already due steppers of a destroyed agent are
//     skipped for the rest of the tick
//
// The package intentionally keeps ordering and frame logic in the scheduler
// package to avoid cyclic deps.
package agent
