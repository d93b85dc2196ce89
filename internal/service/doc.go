// Package service defines the contract between the service manager and the
// background services it runs.
//
// A Service is a unit of recurring work: Run is invoked once per cadence
// tick, and Start/Stop are lifecycle hooks invoked when the manager
// activates/deactivates it. Services are produced by Factory functions kept
// in an immutable Registry keyed by qualified name ("jobs.heartbeat").
//
// A service with an empty cadence is "fire once": Run is invoked exactly
// once right after Start, and the instance then stays active with no further
// scheduled ticks.
package service
