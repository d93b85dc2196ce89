// Package history records per-tick outcomes of background services.
//
// It is an audit log of what ran and how it went, not resumable job state:
// the manager never reads it back to decide scheduling.
//
// Drivers:
//   - "memory": bounded in-memory ring (default)
//   - "file": append-only JSON Lines with compacting prune
//   - "sqlite": SQLite database file
package history
