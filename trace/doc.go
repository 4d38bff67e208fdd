// Package trace records scheduling events. InMemoryRecorder implements
// core.EventSink and keeps what the scheduler did (registrations, commits,
// executions, skips, deregistrations, failures, frame boundaries) so tests and
// examples can assert on execution order without instrumenting callbacks.
package trace
