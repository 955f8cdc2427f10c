// Package log provides structured capture of timer lifecycle events.
//
// This package defines the Logger interface and Event types for recording
// what happened to every timer: creation, start, each published update,
// completion, reset, deletion, and why each tick task stopped. It is separate
// from operational logging (slog); the capture is a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to a binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/tmp/timers.tlog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, usually
// with a .tlog extension. The `timers log` command views and summarizes them.
package log
