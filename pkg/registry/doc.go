// Package registry implements the shared, concurrency-safe collection of
// timers.
//
// # Locking
//
// A single mutex guards the whole identifier→timer map. Every operation
// takes it for exactly one read-modify-write of one entry and releases it
// before returning; no operation blocks or calls out while holding it. Two
// operations on the same identifier are therefore totally ordered, and no
// operation ever observes another's partial effect.
//
// # Runs
//
// StartRun returns a Run naming the epoch it started. A run stays current
// until the timer is started again, reset, or deleted; at that point its
// Stopped channel is closed and TickRun with it fails with ErrSuperseded or
// ErrNotFound. This guarantees at most one effective tick task per timer.
//
// # Deletion
//
// Delete removes the entry. Identifiers are never reused, so a deleted
// timer can not be resurrected by a stale run.
package registry
