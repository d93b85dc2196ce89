// Package manager runs named background services on independent cadences.
//
// # Overview
//
// The Manager owns an immutable registry of service factories and an active
// table of running instances, one self-rescheduling single-shot timer per
// active service. Start instantiates a fresh instance through its factory,
// invokes the Start hook, and arms the timer; Stop cancels the timer, waits
// out any in-flight Run, invokes the Stop hook, and removes the entry.
//
// # Scheduling
//
// Each tick computes the next fire instant strictly after "now" from the
// parsed cadence and arms a single-shot timer for exactly that instant. A
// fixed-period ticker is deliberately not used: it drifts and double-fires
// around field boundaries, and it builds a backlog when Run overruns.
// Rescheduling from the post-Run "now" gives nondecreasing, non-overlapping
// ticks per service.
//
// # Concurrency
//
// Start/Stop for the same name are serialized by a per-name lock, so a Stop
// racing a Start can never leave a dangling timer or a removed-but-firing
// entry. Different services tick independently; one service's hanging Run
// stalls only that service. A Run failure is logged (rate-limited), recorded
// to history, and published on the bus, but never cancels future ticks.
package manager
