package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/modzero/timers-go/pkg/clock"
	"github.com/modzero/timers-go/pkg/event"
	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/registry"
	"github.com/modzero/timers-go/pkg/timer"
)

// Service runs timers and publishes their progress.
type Service struct {
	config   Config
	clock    clock.Clock
	registry *registry.Registry
	emitter  event.Emitter
	pool     *ants.Pool

	logger   *slog.Logger
	eventLog log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
	active atomic.Int64

	mu     sync.Mutex
	closed bool

	// slots maps each timer holding a tick slot to the epoch of the run
	// that owns it. A restart hands the slot to the new run.
	slots map[uuid.UUID]uint64
}

// New creates a service publishing to emitter. A nil emitter discards events.
func New(emitter event.Emitter, config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = event.Discard
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.EventLogger == nil {
		config.EventLogger = log.NoopLogger{}
	}

	svc := &Service{
		config:   config,
		clock:    config.Clock,
		registry: registry.New(config.Clock),
		emitter:  emitter,
		logger:   config.Logger,
		eventLog: config.EventLogger,
		slots:    make(map[uuid.UUID]uint64),
	}

	// Admission is bounded by slots; the pool only waits for superseded
	// tasks to hand back their workers.
	pool, err := ants.NewPool(config.MaxRunning,
		ants.WithMaxBlockingTasks(config.MaxRunning),
		ants.WithPanicHandler(svc.handlePanic),
	)
	if err != nil {
		return nil, fmt.Errorf("create tick pool: %w", err)
	}
	svc.pool = pool
	svc.ctx, svc.cancel = context.WithCancel(context.Background())

	return svc, nil
}

// Make creates an idle timer.
func (s *Service) Make(d time.Duration, label string) timer.Timer {
	t := s.registry.Make(d, label)
	s.record(log.KindCreated, t)
	s.debugLog("timer created", "timer", t.ID(), "duration", d)
	return t
}

// Delete removes a timer. Its tick task, if any, stops without publishing
// again. It returns the last snapshot, or false if the timer did not exist.
func (s *Service) Delete(id uuid.UUID) (timer.Timer, bool) {
	t, ok := s.registry.Delete(id)
	if !ok {
		return timer.Timer{}, false
	}
	s.record(log.KindDeleted, t)
	s.debugLog("timer deleted", "timer", id)
	return t, true
}

// Start starts or restarts a timer and launches its tick task.
// Restarting a timer whose task is still running reuses that task's slot,
// so only timers without a slot can fail with ErrBusy.
func (s *Service) Start(id uuid.UUID) (timer.Timer, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return timer.Timer{}, ErrClosed
	}

	if _, held := s.slots[id]; !held && len(s.slots) >= s.config.MaxRunning {
		s.mu.Unlock()

		err := ErrBusy
		if _, getErr := s.registry.Get(id); getErr != nil {
			err = getErr
		} else {
			s.warnLog("tick task not scheduled", "timer", id, "max_running", s.config.MaxRunning)
		}
		s.recordError(id, "start", err)
		return timer.Timer{}, fmt.Errorf("start %s: %w", id, err)
	}

	run, err := s.registry.StartRun(id)
	if err != nil {
		s.mu.Unlock()
		s.recordError(id, "start", err)
		return timer.Timer{}, fmt.Errorf("start %s: %w", id, err)
	}
	s.slots[id] = run.Epoch
	s.tasks.Add(1)
	s.mu.Unlock()

	s.record(log.KindStarted, run.Timer)

	err = s.pool.Submit(func() {
		defer s.tasks.Done()
		defer s.releaseSlot(run)
		s.active.Add(1)
		defer s.active.Add(-1)
		s.runTicks(run)
	})
	if err != nil {
		s.tasks.Done()
		s.releaseSlot(run)
		// Leave the timer idle rather than started with no task ticking it.
		_, _ = s.registry.Abort(run)

		cause := ErrBusy
		if errors.Is(err, ants.ErrPoolClosed) {
			cause = ErrClosed
		}
		s.warnLog("tick task not scheduled", "timer", id, "error", err)
		s.recordError(id, "start", cause)
		return timer.Timer{}, fmt.Errorf("start %s: %w", id, cause)
	}

	s.debugLog("timer started", "timer", id, "epoch", run.Epoch)
	return run.Timer, nil
}

// releaseSlot frees the timer's slot unless a newer run has taken it over.
func (s *Service) releaseSlot(run registry.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch, held := s.slots[run.ID]; held && epoch == run.Epoch {
		delete(s.slots, run.ID)
	}
}

// Reset returns a timer to idle with a new duration and publishes its state.
func (s *Service) Reset(id uuid.UUID, d time.Duration) (timer.Timer, error) {
	t, err := s.registry.Reset(id, d)
	if err != nil {
		s.recordError(id, "reset", err)
		return timer.Timer{}, fmt.Errorf("reset %s: %w", id, err)
	}
	s.record(log.KindReset, t)

	if err := s.emit(event.KindUpdate, t); err != nil {
		s.debugLog("reset update not published", "timer", id, "error", err)
	}
	return t, nil
}

// Get returns the current snapshot of a timer.
func (s *Service) Get(id uuid.UUID) (timer.Timer, error) {
	t, err := s.registry.Get(id)
	if err != nil {
		return timer.Timer{}, fmt.Errorf("get %s: %w", id, err)
	}
	return t, nil
}

// List returns snapshots of all timers ordered by identifier.
func (s *Service) List() []timer.Timer {
	return s.registry.List()
}

// Len returns the number of timers.
func (s *Service) Len() int {
	return s.registry.Len()
}

// Running returns the number of tick tasks currently executing.
func (s *Service) Running() int {
	return int(s.active.Load())
}

// MaxRunning returns the tick task limit.
func (s *Service) MaxRunning() int {
	return s.config.MaxRunning
}

// Close stops every tick task and waits for them to exit.
// Timers remain readable; Start fails with ErrClosed afterwards.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.tasks.Wait()
	s.pool.Release()

	s.debugLog("service closed")
	return nil
}

func (s *Service) emit(kind event.Kind, t timer.Timer) error {
	return s.emitter.Emit(event.Event{
		Kind:      kind,
		Timer:     t,
		Timestamp: s.clock.Now(),
	})
}

// record writes a timer event to the event log.
func (s *Service) record(kind log.Kind, t timer.Timer) {
	snap := t.Snapshot()
	s.eventLog.Log(log.Event{
		Timestamp: s.clock.Now(),
		TimerID:   t.ID().String(),
		Kind:      kind,
		Snapshot:  &snap,
	})
}

func (s *Service) recordError(id uuid.UUID, op string, err error) {
	s.eventLog.Log(log.Event{
		Timestamp: s.clock.Now(),
		TimerID:   id.String(),
		Kind:      log.KindError,
		Error: &log.ErrorEventData{
			Operation: op,
			Message:   err.Error(),
		},
	})
}

func (s *Service) handlePanic(p any) {
	if s.logger != nil {
		s.logger.Error("tick task panicked", "panic", p)
	}
}

func (s *Service) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Service) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
