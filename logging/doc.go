// Package logging provides a minimal logging interface and adapters for stepmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the scheduler, driver and agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - StepMeshLogger with component scoping and tick/stepper helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	sched := scheduler.New(func(o *scheduler.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
