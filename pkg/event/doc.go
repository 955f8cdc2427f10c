// Package event defines the outbound channel through which timer progress
// reaches the presentation layer.
//
// Two kinds of events exist: KindUpdate carries the current snapshot of a
// running timer (and of a timer that was just reset), KindDone carries the
// final snapshot of a run that reached its duration and is emitted once per
// run.
//
// Delivery is fire-and-forget. An Emitter reports an error only when the
// channel is gone for good; the tick task stops on any such error.
//
// # Hub
//
// Hub fans events out to any number of subscribers, each with its own
// buffered channel. A subscriber that falls behind loses events rather than
// stalling the tick tasks. Closing the hub closes every subscriber channel,
// after which Emit returns ErrClosed.
package event
