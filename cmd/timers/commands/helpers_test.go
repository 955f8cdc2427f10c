package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/timer"
)

var testTime = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

// createTestLogFile writes events to a temporary log file.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// lifecycle returns the events of one timer that is created, started,
// ticked once and completed.
func lifecycle(t *testing.T, label string, start time.Time) []log.Event {
	t.Helper()

	tm := timer.New(2*time.Second, label)
	created := tm.Snapshot()

	tm = tm.Start(start)
	started := tm.Snapshot()

	tm, err := tm.Tick(start.Add(time.Second))
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	updated := tm.Snapshot()

	tm, err = tm.Tick(start.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	done := tm.Snapshot()

	id := tm.ID().String()
	return []log.Event{
		{Timestamp: start, TimerID: id, Kind: log.KindCreated, Snapshot: &created},
		{Timestamp: start, TimerID: id, Kind: log.KindStarted, Snapshot: &started},
		{Timestamp: start.Add(time.Second), TimerID: id, Kind: log.KindUpdated, Snapshot: &updated},
		{Timestamp: start.Add(2 * time.Second), TimerID: id, Kind: log.KindDone, Snapshot: &done},
		{Timestamp: start.Add(2 * time.Second), TimerID: id, Kind: log.KindStopped,
			Stop: &log.StopEvent{Reason: log.StopComplete, Epoch: 1, Ticks: 2}},
	}
}
