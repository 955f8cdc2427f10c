package service

import (
	"errors"
	"time"

	"github.com/modzero/timers-go/pkg/event"
	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/registry"
	"github.com/modzero/timers-go/pkg/timer"
)

// runTicks advances one run of a timer until it completes or is stopped.
// It never holds the registry lock while publishing.
func (s *Service) runTicks(run registry.Run) {
	ticker := time.NewTicker(s.config.TickPeriod())
	defer ticker.Stop()

	var ticks uint64
	for {
		select {
		case <-s.ctx.Done():
			s.stopped(run, log.StopShutdown, ticks)
			return
		case <-run.Stopped:
			// The run was superseded or its timer deleted; TickRun reports which.
		case <-ticker.C:
		}

		t, err := s.registry.TickRun(run)
		if err != nil {
			s.stopped(run, stopReason(err), ticks)
			return
		}
		ticks++

		if t.IsComplete() {
			if err := s.emit(event.KindDone, t); err != nil {
				s.debugLog("done event not published", "timer", run.ID, "error", err)
			}
			s.record(log.KindDone, t)
			s.stopped(run, log.StopComplete, ticks)
			return
		}

		if err := s.emit(event.KindUpdate, t); err != nil {
			s.debugLog("update event not published", "timer", run.ID, "error", err)
			s.stopped(run, log.StopEmitFailed, ticks)
			return
		}
		s.record(log.KindUpdated, t)
	}
}

func (s *Service) stopped(run registry.Run, reason log.StopReason, ticks uint64) {
	s.debugLog("tick task stopped",
		"timer", run.ID,
		"epoch", run.Epoch,
		"reason", reason.String(),
		"ticks", ticks)

	s.eventLog.Log(log.Event{
		Timestamp: s.clock.Now(),
		TimerID:   run.ID.String(),
		Kind:      log.KindStopped,
		Stop: &log.StopEvent{
			Reason: reason,
			Epoch:  run.Epoch,
			Ticks:  ticks,
		},
	})
}

func stopReason(err error) log.StopReason {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return log.StopNotFound
	case errors.Is(err, timer.ErrNotStarted):
		return log.StopNotStarted
	default:
		return log.StopSuperseded
	}
}
