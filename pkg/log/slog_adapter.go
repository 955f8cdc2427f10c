package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes timer events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("timer_id", event.TimerID),
		slog.String("kind", event.Kind.String()),
	}

	if s := event.Snapshot; s != nil {
		attrs = append(attrs,
			slog.Uint64("version", s.Version),
			slog.Duration("duration", s.Duration.Std()),
		)
		if s.Elapsed != nil {
			attrs = append(attrs, slog.Duration("elapsed", s.Elapsed.Std()))
		}
		if s.Label != "" {
			attrs = append(attrs, slog.String("label", s.Label))
		}
	}

	switch {
	case event.Stop != nil:
		attrs = append(attrs,
			slog.String("reason", event.Stop.Reason.String()),
			slog.Uint64("epoch", event.Stop.Epoch),
			slog.Uint64("ticks", event.Stop.Ticks),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("operation", event.Error.Operation),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "timer", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
