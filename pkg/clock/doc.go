// Package clock abstracts the time source used by timer transitions.
//
// Production code uses Real, which reads time.Now and therefore carries the
// monotonic clock reading that tick deltas are computed from. Tests use
// Manual to step time deterministically.
package clock
