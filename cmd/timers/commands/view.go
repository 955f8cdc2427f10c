// Package commands implements the timers log subcommands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/timer"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	TimerID string
	Kind    *log.Kind
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [timer:id] KIND
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [timer:%s] %s\n", ts, shortenID(event.TimerID), event.Kind.String())

	switch {
	case event.Snapshot != nil:
		formatSnapshotDetails(w, event.Snapshot)
	case event.Stop != nil:
		formatStopDetails(w, event.Stop)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a timer ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatSnapshotDetails(w io.Writer, snap *timer.Snapshot) {
	if snap.Label != "" {
		fmt.Fprintf(w, "  Label: %q\n", snap.Label)
	}
	fmt.Fprintf(w, "  Duration: %s\n", formatDuration(snap.Duration.Std()))
	if snap.Elapsed != nil {
		fmt.Fprintf(w, "  Elapsed: %s\n", formatDuration(snap.Elapsed.Std()))
	}
	if snap.Started != nil {
		fmt.Fprintf(w, "  Started: %s\n", snap.Started.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  Version: %d\n", snap.Version)
}

func formatStopDetails(w io.Writer, stop *log.StopEvent) {
	fmt.Fprintf(w, "  Reason: %s\n", stop.Reason.String())
	fmt.Fprintf(w, "  Epoch: %d  Ticks: %d\n", stop.Epoch, stop.Ticks)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	if err.Operation != "" {
		fmt.Fprintf(w, "  Operation: %s\n", err.Operation)
	}
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseKindFlag parses an event kind from a command-line flag (case-insensitive).
func ParseKindFlag(s string) (log.Kind, error) {
	for k := log.KindCreated; k <= log.KindError; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid kind: %s (must be created, started, updated, done, reset, deleted, stopped, or error)", s)
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		TimerID: filter.TimerID,
		Kind:    filter.Kind,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
