// Package timer implements the countdown timer value type.
//
// A Timer is a plain value. Every transition (Start, Tick, Reset) takes the
// old value and returns a new one; nothing in this package locks or spawns
// goroutines. The registry package is the only place that commits new values
// into shared state.
//
// # Lifecycle
//
// A timer is created idle by New. Start sets the wall-clock start time and an
// elapsed count of zero. Each Tick adds the time since the previous tick (or
// since Start) to the elapsed count. Reset returns the timer to idle and may
// change its duration.
//
// A timer is complete once its elapsed time reaches its duration. Completion
// does not stop Tick from accumulating; only Reset clears it.
//
// # Versions and epochs
//
// Every transition increments Version, which is serialized so receivers can
// discard out-of-order updates. Start and Reset also increment Epoch, which
// identifies a single run of the timer and is never serialized.
package timer
