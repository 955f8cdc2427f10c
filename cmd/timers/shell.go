package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/modzero/timers-go/cmd/timers/interactive"
	"github.com/modzero/timers-go/internal/config"
	"github.com/modzero/timers-go/pkg/event"
	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/service"
)

type shellOptions struct {
	eventLog string
	logLevel string
	tickRate int
}

func newShellCmd(root *rootOptions) *cobra.Command {
	opts := &shellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run timers interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}
			return runShell(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.eventLog, "event-log", "", "record timer events to this file (overrides event_log)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	cmd.Flags().IntVar(&opts.tickRate, "tick-rate", 0, "ticks per second (overrides tick_rate)")
	return cmd
}

// apply merges command-line overrides into cfg.
func (o *shellOptions) apply(cfg *config.Config) error {
	if o.eventLog != "" {
		cfg.EventLog = o.eventLog
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.tickRate != 0 {
		cfg.TickRate = o.tickRate
	}
	return cfg.Validate()
}

// buildEventLogger returns the event logger described by cfg and a function
// releasing it.
func buildEventLogger(cfg *config.Config, logger *slog.Logger) (log.Logger, func() error, error) {
	noop := func() error { return nil }

	var loggers []log.Logger
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	closeFn := noop
	if cfg.EventLog != "" {
		fl, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return nil, noop, fmt.Errorf("open event log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = fl.Close
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

func runShell(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	eventLogger, closeEventLog, err := buildEventLogger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEventLog()

	hub := event.NewHub()
	defer hub.Close()

	svcConfig := cfg.ServiceConfig()
	svcConfig.Logger = logger
	svcConfig.EventLogger = eventLogger

	svc, err := service.New(hub, svcConfig)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer svc.Close()

	shell, err := interactive.New(svc, hub, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Debug("shell started", "tick_rate", svcConfig.TickRate, "event_log", cfg.EventLog)
	shell.Run(ctx, cancel)
	return nil
}
