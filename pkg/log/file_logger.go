package log

import (
	"bufio"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// UpdateFlushInterval is the number of buffered KindUpdated records after
// which the file is flushed. One second of updates at the default tick rate.
const UpdateFlushInterval = 60

// FileLogger writes timer events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
//
// Progress updates are buffered and written every UpdateFlushInterval
// records. Every other kind flushes the buffer, so lifecycle records and
// the updates preceding them are on disk once Log returns.
type FileLogger struct {
	file    *os.File
	buf     *bufio.Writer
	encoder *cbor.Encoder
	pending int
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a FileLogger that appends to the file at path,
// creating it with permissions 0644 if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &FileLogger{
		file:    f,
		buf:     buf,
		encoder: NewEncoder(buf),
	}, nil
}

// Log writes an event to the log file.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Encoding errors are dropped; capture must not disturb the timers.
	if err := l.encoder.Encode(event); err != nil {
		return
	}
	if event.Kind == KindUpdated {
		l.pending++
		if l.pending < UpdateFlushInterval {
			return
		}
	}
	_ = l.flushLocked()
}

// Flush writes any buffered events to the file.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.flushLocked()
}

func (l *FileLogger) flushLocked() error {
	l.pending = 0
	return l.buf.Flush()
}

// Close flushes buffered events and closes the log file. It is safe to
// call Close multiple times. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	flushErr := l.flushLocked()
	if err := l.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
