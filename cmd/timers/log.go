package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modzero/timers-go/cmd/timers/commands"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <command>",
		Short: "Inspect timer event logs",
	}
	cmd.AddCommand(
		newLogViewCmd(),
		newLogExportCmd(),
		newLogFilterCmd(),
		newLogStatsCmd(),
	)
	return cmd
}

func newLogViewCmd() *cobra.Command {
	var timerID, kind string

	cmd := &cobra.Command{
		Use:   "view [flags] <file.tlog>",
		Short: "View an event log in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := commands.ViewFilter{TimerID: timerID}
			if kind != "" {
				k, err := commands.ParseKindFlag(kind)
				if err != nil {
					return err
				}
				filter.Kind = &k
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&timerID, "timer", "", "filter by timer ID")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind (created, started, updated, done, reset, deleted, stopped, error)")
	return cmd
}

func newLogExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export [flags] <file.tlog>",
		Short: "Export an event log to JSONL or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunExport(args[0], format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "jsonl", "output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newLogFilterCmd() *cobra.Command {
	var opts commands.FilterOptions

	cmd := &cobra.Command{
		Use:   "filter [flags] <file.tlog>",
		Short: "Filter an event log into a new file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := commands.RunFilter(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", count, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVar(&opts.TimerID, "timer", "", "filter by timer ID")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by kind")
	cmd.Flags().StringVar(&opts.TimeStart, "time-start", "", "keep events at or after this RFC 3339 time")
	cmd.Flags().StringVar(&opts.TimeEnd, "time-end", "", "keep events before this RFC 3339 time")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newLogStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.tlog>",
		Short: "Show statistics about an event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}
}
