package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/timer"
)

// exportRecord is the JSON form of one event.
type exportRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	TimerID   string              `json:"timer_id"`
	Kind      string              `json:"kind"`
	Snapshot  *timer.Snapshot     `json:"snapshot,omitempty"`
	Stop      *exportStop         `json:"stop,omitempty"`
	Error     *log.ErrorEventData `json:"error,omitempty"`
}

type exportStop struct {
	Reason string `json:"reason"`
	Epoch  uint64 `json:"epoch"`
	Ticks  uint64 `json:"ticks"`
}

func newExportRecord(event log.Event) exportRecord {
	rec := exportRecord{
		Timestamp: event.Timestamp,
		TimerID:   event.TimerID,
		Kind:      event.Kind.String(),
		Snapshot:  event.Snapshot,
		Error:     event.Error,
	}
	if event.Stop != nil {
		rec.Stop = &exportStop{
			Reason: event.Stop.Reason.String(),
			Epoch:  event.Stop.Epoch,
			Ticks:  event.Stop.Ticks,
		}
	}
	return rec
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "timer_id", "kind", "duration_ns", "elapsed_ns", "version", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var duration, elapsed, version, detail string
		switch {
		case event.Snapshot != nil:
			duration = strconv.FormatInt(int64(event.Snapshot.Duration.Std()), 10)
			if event.Snapshot.Elapsed != nil {
				elapsed = strconv.FormatInt(int64(event.Snapshot.Elapsed.Std()), 10)
			}
			version = strconv.FormatUint(event.Snapshot.Version, 10)
			detail = event.Snapshot.Label
		case event.Stop != nil:
			detail = event.Stop.Reason.String()
		case event.Error != nil:
			detail = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.TimerID,
			event.Kind.String(),
			duration,
			elapsed,
			version,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
