package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/modzero/timers-go/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage the timers configuration file",
		Long: `Manage the timers configuration file.

Configuration options:
  tick_rate       - Ticks per second for running timers
  max_running     - Maximum number of timers running at once
  logging.level   - debug, info, warn or error
  logging.format  - text or json
  event_log       - File recording timer events (CBOR)
  presets         - Named durations usable in the shell`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(root.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", root.configPath)
			}
			if err := config.Save(root.configPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", root.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# Location: %s\n", root.configPath)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
