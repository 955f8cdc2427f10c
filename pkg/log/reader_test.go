package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var events []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, e)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.tlog")); err == nil {
		t.Error("NewReader should fail for a missing file")
	}
}

func TestReaderEmptyFile(t *testing.T) {
	path := writeEvents(t, nil)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestFilteredReader(t *testing.T) {
	events := []Event{
		{Timestamp: testTime, TimerID: "a", Kind: KindCreated},
		{Timestamp: testTime.Add(time.Second), TimerID: "a", Kind: KindStarted},
		{Timestamp: testTime.Add(2 * time.Second), TimerID: "b", Kind: KindCreated},
		{Timestamp: testTime.Add(3 * time.Second), TimerID: "a", Kind: KindDone},
	}
	path := writeEvents(t, events)

	created := KindCreated
	start := testTime.Add(time.Second)
	end := testTime.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"ByTimer", Filter{TimerID: "a"}, 3},
		{"ByKind", Filter{Kind: &created}, 2},
		{"ByTimerAndKind", Filter{TimerID: "b", Kind: &created}, 1},
		{"ByTimeRange", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"NoMatch", Filter{TimerID: "z"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()

			if got := len(readAll(t, r)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}
