// Package core provides the foundational domain types and interfaces used by
// stepmesh. It defines the core abstractions for:
//
//   - Owners (agent-like identities whose liveness gates execution)
//   - Steppers (immutable records pairing a callback with frequency,
//     priority and queue slot metadata)
//   - Queue slots and the priority/slot canonicalization rules
//   - Events (immutable scheduling records emitted to an EventSink)
//   - Scheduler contracts consumed by the agent and driver packages
//
// The package intentionally keeps implementation concerns (the pending table,
// frame bookkeeping, concrete agents, tick sources) out of scope, exposing
// small interfaces so that the agent and driver packages can be tested against
// doubles and wired to any scheduler implementation.
package core
