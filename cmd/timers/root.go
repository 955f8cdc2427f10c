package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modzero/timers-go/internal/config"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "timers",
		Short: "Countdown timers with a live event channel",
		Long: `timers runs named countdown timers. Running timers are ticked at a fixed
rate and report their progress as timer-update and timer-done events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "configuration file")

	cmd.AddCommand(
		newShellCmd(opts),
		newLogCmd(),
		newConfigCmd(opts),
	)
	return cmd
}

// loadConfig reads the configuration named by --config.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "timers.yaml"
	}
	return filepath.Join(dir, "timers", "config.yaml")
}
