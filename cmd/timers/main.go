// Command timers runs countdown timers from an interactive shell and
// inspects the event logs they produce.
//
// Usage:
//
//	timers <command> [flags]
//
// Commands:
//
//	shell         Run timers interactively
//	log view      View an event log in human-readable format
//	log export    Export an event log to JSONL or CSV
//	log filter    Filter an event log into a new file
//	log stats     Show statistics about an event log
//	config init   Write a default configuration file
//	config show   Print the effective configuration
//
// Examples:
//
//	# Start the shell and record events
//	timers shell --event-log timers.tlog
//
//	# Show only completed timers
//	timers log view --kind done timers.tlog
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
