package timer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Timer errors.
var (
	ErrNotStarted = errors.New("timer not started")
)

// Timer is a single countdown. The zero value is not usable; create timers
// with New.
type Timer struct {
	id       uuid.UUID
	label    string
	duration time.Duration

	// started is the wall-clock start time; valid while running is true.
	started time.Time

	// elapsed is the accumulated running time; valid while running is true.
	elapsed time.Duration

	// checked is the instant of the last tick. It keeps the monotonic
	// reading of the clock it came from.
	checked time.Time

	running bool
	version uint64
	epoch   uint64
}

// New creates an idle timer with a fresh identifier.
func New(d time.Duration, label string) Timer {
	return Timer{
		id:       uuid.New(),
		label:    label,
		duration: d,
	}
}

// ID returns the timer's identifier.
func (t Timer) ID() uuid.UUID { return t.id }

// Label returns the timer's free-form label.
func (t Timer) Label() string { return t.label }

// Duration returns the target elapsed time.
func (t Timer) Duration() time.Duration { return t.duration }

// Version returns the transition counter.
func (t Timer) Version() uint64 { return t.version }

// Epoch returns the run generation. It changes on Start and Reset only.
func (t Timer) Epoch() uint64 { return t.epoch }

// Running reports whether the timer has been started and not reset since.
// A complete timer is still running in this sense.
func (t Timer) Running() bool { return t.running }

// StartedAt returns the wall-clock start time, if started.
func (t Timer) StartedAt() (time.Time, bool) {
	if !t.running {
		return time.Time{}, false
	}
	return t.started, true
}

// Elapsed returns the accumulated running time, if started.
func (t Timer) Elapsed() (time.Duration, bool) {
	if !t.running {
		return 0, false
	}
	return t.elapsed, true
}

// Remaining returns the time left until completion. It is the full duration
// for an idle timer and zero for a complete one.
func (t Timer) Remaining() time.Duration {
	remaining := t.duration - t.elapsed
	if !t.running {
		remaining = t.duration
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsComplete reports whether the timer has run for at least its duration.
// It is false for a timer that was never started.
func (t Timer) IsComplete() bool {
	return t.running && t.elapsed >= t.duration
}

// Start returns t restarted at now. Starting a running timer restarts its
// elapsed count.
func (t Timer) Start(now time.Time) Timer {
	t.started = now
	t.elapsed = 0
	t.checked = now
	t.running = true
	t.version++
	t.epoch++
	return t
}

// Tick returns t advanced by the time since the previous tick.
// It fails with ErrNotStarted if t is not running.
func (t Timer) Tick(now time.Time) (Timer, error) {
	if !t.running {
		return t, ErrNotStarted
	}

	// A clock stepping backwards must not shrink elapsed.
	if delta := now.Sub(t.checked); delta > 0 {
		t.elapsed += delta
	}
	t.checked = now
	t.version++
	return t, nil
}

// Reset returns t idle with a new duration.
func (t Timer) Reset(d time.Duration) Timer {
	t.duration = d
	t.started = time.Time{}
	t.elapsed = 0
	t.checked = time.Time{}
	t.running = false
	t.version++
	t.epoch++
	return t
}

// MarshalJSON encodes the timer's snapshot.
func (t Timer) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}
