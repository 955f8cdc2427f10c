package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/modzero/timers-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	StopReasons  map[log.StopReason]int
	Timers       map[string]*TimerStats
	Errors       int
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// TimerStats holds statistics for a single timer.
type TimerStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Label     string
	Starts    int
	Completed int
	Deleted   bool
}

// CollectStats reads every event of the log file into a Stats value.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		StopReasons:  make(map[log.StopReason]int),
		Timers:       make(map[string]*TimerStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Error != nil {
			stats.Errors++
			continue
		}

		ts, ok := stats.Timers[event.TimerID]
		if !ok {
			ts = &TimerStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Timers[event.TimerID] = ts
		}
		ts.Events++
		if event.Timestamp.After(ts.LastSeen) {
			ts.LastSeen = event.Timestamp
		}
		if event.Snapshot != nil && event.Snapshot.Label != "" {
			ts.Label = event.Snapshot.Label
		}

		switch event.Kind {
		case log.KindStarted:
			ts.Starts++
		case log.KindDone:
			ts.Completed++
		case log.KindDeleted:
			ts.Deleted = true
		case log.KindStopped:
			if event.Stop != nil {
				stats.StopReasons[event.Stop.Reason]++
			}
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Timer Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for k := log.KindCreated; k <= log.KindError; k++ {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.StopReasons) > 0 {
		fmt.Fprintln(w, "Tick Tasks Stopped:")
		for r := log.StopComplete; r <= log.StopShutdown; r++ {
			if count := stats.StopReasons[r]; count > 0 {
				fmt.Fprintf(w, "  %-12s %d\n", r.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Timers: %d\n", len(stats.Timers))
	if len(stats.Timers) > 0 {
		type timerInfo struct {
			id    string
			stats *TimerStats
		}
		timers := make([]timerInfo, 0, len(stats.Timers))
		for id, ts := range stats.Timers {
			timers = append(timers, timerInfo{id, ts})
		}
		sort.Slice(timers, func(i, j int) bool {
			return timers[i].stats.FirstSeen.Before(timers[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, t := range timers {
			lifetime := t.stats.LastSeen.Sub(t.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, lifetime %s\n", shortenID(t.id), t.stats.Events, lifetime)
			if t.stats.Label != "" {
				fmt.Fprintf(w, "           Label: %s\n", t.stats.Label)
			}
			fmt.Fprintf(w, "           Starts: %d  Completed: %d\n", t.stats.Starts, t.stats.Completed)
			if t.stats.Deleted {
				fmt.Fprintln(w, "           Deleted")
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
