package timer

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is the serialized form of a Timer published to the presentation
// layer and recorded in event logs. The tick-tracking instant and the epoch
// are not part of it.
type Snapshot struct {
	ID uuid.UUID `json:"id" cbor:"1,keyasint"`

	// Started is the wall-clock start time with its zone offset; nil if idle.
	Started *time.Time `json:"started" cbor:"2,keyasint,omitempty"`

	Duration Duration `json:"duration" cbor:"3,keyasint"`

	// Elapsed is nil if the timer is idle.
	Elapsed *Duration `json:"elapsed" cbor:"4,keyasint,omitempty"`

	Label   string `json:"label,omitempty" cbor:"5,keyasint,omitempty"`
	Version uint64 `json:"version" cbor:"6,keyasint"`
}

// Duration is the wire form of a time.Duration: whole seconds plus the
// nanosecond remainder. Negative durations encode as zero.
type Duration struct {
	Secs  uint64 `json:"secs" cbor:"1,keyasint"`
	Nanos uint32 `json:"nanos" cbor:"2,keyasint"`
}

// DurationOf converts d to its wire form.
func DurationOf(d time.Duration) Duration {
	if d <= 0 {
		return Duration{}
	}
	return Duration{
		Secs:  uint64(d / time.Second),
		Nanos: uint32(d % time.Second),
	}
}

// Std converts the wire form back to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

// Snapshot returns the serialized form of t.
func (t Timer) Snapshot() Snapshot {
	s := Snapshot{
		ID:       t.id,
		Duration: DurationOf(t.duration),
		Label:    t.label,
		Version:  t.version,
	}
	if t.running {
		started := t.started.Round(0)
		elapsed := DurationOf(t.elapsed)
		s.Started = &started
		s.Elapsed = &elapsed
	}
	return s
}

// IsComplete reports whether the snapshot shows a complete timer.
func (s Snapshot) IsComplete() bool {
	return s.Elapsed != nil && s.Elapsed.Std() >= s.Duration.Std()
}
