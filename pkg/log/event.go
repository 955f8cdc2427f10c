package log

import (
	"time"

	"github.com/modzero/timers-go/pkg/timer"
)

// Event represents one captured timer event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// TimerID is the timer's UUID in string form.
	TimerID string `cbor:"2,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"3,keyasint"`

	// Snapshot is the timer state after the event, when one exists.
	Snapshot *timer.Snapshot `cbor:"4,keyasint,omitempty"`

	// Stop is set for KindStopped.
	Stop *StopEvent `cbor:"5,keyasint,omitempty"`

	// Error is set for KindError.
	Error *ErrorEventData `cbor:"6,keyasint,omitempty"`
}

// Kind classifies a timer event.
type Kind uint8

const (
	// KindCreated records a new timer.
	KindCreated Kind = 0
	// KindStarted records a start or restart.
	KindStarted Kind = 1
	// KindUpdated records a published progress update.
	KindUpdated Kind = 2
	// KindDone records a completed run.
	KindDone Kind = 3
	// KindReset records a reset.
	KindReset Kind = 4
	// KindDeleted records a deletion.
	KindDeleted Kind = 5
	// KindStopped records the end of a tick task.
	KindStopped Kind = 6
	// KindError records a failed command.
	KindError Kind = 7
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "CREATED"
	case KindStarted:
		return "STARTED"
	case KindUpdated:
		return "UPDATED"
	case KindDone:
		return "DONE"
	case KindReset:
		return "RESET"
	case KindDeleted:
		return "DELETED"
	case KindStopped:
		return "STOPPED"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StopReason says why a tick task ended.
type StopReason uint8

const (
	// StopComplete means the run reached its duration.
	StopComplete StopReason = 0
	// StopNotFound means the timer was deleted.
	StopNotFound StopReason = 1
	// StopNotStarted means the timer was not running.
	StopNotStarted StopReason = 2
	// StopSuperseded means the timer was restarted or reset.
	StopSuperseded StopReason = 3
	// StopEmitFailed means the event channel went away.
	StopEmitFailed StopReason = 4
	// StopShutdown means the service was closed.
	StopShutdown StopReason = 5
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StopComplete:
		return "COMPLETE"
	case StopNotFound:
		return "NOT_FOUND"
	case StopNotStarted:
		return "NOT_STARTED"
	case StopSuperseded:
		return "SUPERSEDED"
	case StopEmitFailed:
		return "EMIT_FAILED"
	case StopShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// StopEvent describes the end of a tick task.
type StopEvent struct {
	// Reason the task ended.
	Reason StopReason `cbor:"1,keyasint"`

	// Epoch of the run the task served.
	Epoch uint64 `cbor:"2,keyasint"`

	// Ticks is the number of successful ticks the task performed.
	Ticks uint64 `cbor:"3,keyasint"`
}

// ErrorEventData captures a failed command.
type ErrorEventData struct {
	// Operation is the command that failed (e.g. "start").
	Operation string `json:"operation,omitempty" cbor:"1,keyasint"`

	// Message is the error message.
	Message string `json:"message" cbor:"2,keyasint"`
}
