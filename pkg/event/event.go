package event

import (
	"errors"
	"time"

	"github.com/modzero/timers-go/pkg/timer"
)

// Event channel errors.
var (
	ErrClosed = errors.New("event channel closed")
)

// Kind identifies the event type. Its string value is the event name seen by
// the presentation layer.
type Kind string

const (
	// KindUpdate reports the current state of a timer.
	KindUpdate Kind = "timer-update"

	// KindDone reports that a timer run reached its duration.
	KindDone Kind = "timer-done"
)

// String returns the event name.
func (k Kind) String() string {
	return string(k)
}

// Event is one message on the outbound channel.
type Event struct {
	Kind Kind

	// Timer is the snapshot the event reports.
	Timer timer.Timer

	// Timestamp is when the event was generated.
	Timestamp time.Time
}

// Emitter publishes events. Implementations must be safe for concurrent use.
type Emitter interface {
	// Emit publishes e. A non-nil error means the channel can no longer
	// deliver events.
	Emit(e Event) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event) error

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) error {
	return f(e)
}

// Discard accepts and drops every event.
var Discard Emitter = EmitterFunc(func(Event) error { return nil })
