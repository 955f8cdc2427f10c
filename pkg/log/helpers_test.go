package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/modzero/timers-go/pkg/timer"
)

var testTime = time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

// runningSnapshot returns the snapshot of a timer started at testTime and
// ticked once after elapsed.
func runningSnapshot(t *testing.T, d, elapsed time.Duration) *timer.Snapshot {
	t.Helper()
	tm, err := timer.New(d, "tea").Start(testTime).Tick(testTime.Add(elapsed))
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	s := tm.Snapshot()
	return &s
}

// writeEvents writes events to a fresh log file and returns its path.
func writeEvents(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}
