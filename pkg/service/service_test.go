package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/modzero/timers-go/pkg/clock"
	"github.com/modzero/timers-go/pkg/event"
	"github.com/modzero/timers-go/pkg/log"
	"github.com/modzero/timers-go/pkg/registry"
	"github.com/modzero/timers-go/pkg/timer"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	waitFor = 2 * time.Second
	pollAt  = 2 * time.Millisecond
)

// stubEmitter records published events and returns what the mock is told to.
type stubEmitter struct {
	mock.Mock

	mu     sync.Mutex
	events []event.Event
}

func newStubEmitter(err error) *stubEmitter {
	e := &stubEmitter{}
	e.On("Emit", mock.Anything).Return(err)
	return e
}

func (e *stubEmitter) Emit(ev event.Event) error {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
	return e.Called(ev).Error(0)
}

func (e *stubEmitter) all() []event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]event.Event(nil), e.events...)
}

func (e *stubEmitter) count(kind event.Kind) int {
	n := 0
	for _, ev := range e.all() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// recordingLogger collects event log records.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *recordingLogger) Log(e log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *recordingLogger) kinds() []log.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]log.Kind, 0, len(l.events))
	for _, e := range l.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (l *recordingLogger) stops() []log.StopEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var stops []log.StopEvent
	for _, e := range l.events {
		if e.Stop != nil {
			stops = append(stops, *e.Stop)
		}
	}
	return stops
}

func newTestService(t *testing.T, emitter event.Emitter, mutate ...func(*Config)) (*Service, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(epoch)
	config := DefaultConfig()
	config.TickRate = 500
	config.Clock = clk
	for _, m := range mutate {
		m(&config)
	}

	svc, err := New(emitter, config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, clk
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.TickRate = 0

	_, err := New(nil, config)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMakeAndGet(t *testing.T) {
	svc, _ := newTestService(t, nil)

	made := svc.Make(3*time.Second, "eggs")
	got, err := svc.Get(made.ID())
	require.NoError(t, err)

	assert.Equal(t, made.ID(), got.ID())
	assert.Equal(t, 3*time.Second, got.Duration())
	assert.Equal(t, "eggs", got.Label())
	assert.False(t, got.Running())
	assert.Len(t, svc.List(), 1)
}

func TestGetUnknown(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Get(uuid.New())
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestLenAndMaxRunning(t *testing.T) {
	svc, _ := newTestService(t, nil, func(c *Config) { c.MaxRunning = 3 })

	assert.Equal(t, 0, svc.Len())
	a := svc.Make(time.Second, "")
	svc.Make(time.Second, "")
	assert.Equal(t, 2, svc.Len())

	svc.Delete(a.ID())
	assert.Equal(t, 1, svc.Len())
	assert.Equal(t, 3, svc.MaxRunning())
}

func TestStartUnknownDoesNotCreate(t *testing.T) {
	emitter := newStubEmitter(nil)
	svc, _ := newTestService(t, emitter)

	_, err := svc.Start(uuid.New())
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Empty(t, svc.List())
	assert.Equal(t, 0, svc.Running())
	assert.Empty(t, emitter.all())
}

func TestResetUnknown(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Reset(uuid.New(), time.Second)
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Empty(t, svc.List())
}

func TestDeleteUnknown(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, ok := svc.Delete(uuid.New())
	assert.False(t, ok)
}

func TestStartPublishesUpdates(t *testing.T) {
	emitter := newStubEmitter(nil)
	svc, clk := newTestService(t, emitter)

	tm := svc.Make(10*time.Second, "")
	started, err := svc.Start(tm.ID())
	require.NoError(t, err)
	assert.True(t, started.Running())

	at, ok := started.StartedAt()
	require.True(t, ok)
	assert.True(t, at.Equal(epoch))

	clk.Advance(time.Second)

	require.Eventually(t, func() bool {
		return emitter.count(event.KindUpdate) >= 2
	}, waitFor, pollAt)

	for _, ev := range emitter.all() {
		assert.Equal(t, event.KindUpdate, ev.Kind)
		assert.Equal(t, tm.ID(), ev.Timer.ID())
		assert.False(t, ev.Timer.IsComplete())
	}

	// Updates carry increasing versions.
	events := emitter.all()
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Timer.Version(), events[i-1].Timer.Version())
	}
}

func TestDonePublishedExactlyOnce(t *testing.T) {
	emitter := newStubEmitter(nil)
	svc, clk := newTestService(t, emitter)

	tm := svc.Make(time.Second, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)

	clk.Advance(2 * time.Second)

	require.Eventually(t, func() bool {
		return emitter.count(event.KindDone) == 1 && svc.Running() == 0
	}, waitFor, pollAt)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, emitter.count(event.KindDone))

	events := emitter.all()
	last := events[len(events)-1]
	assert.Equal(t, event.KindDone, last.Kind)
	assert.True(t, last.Timer.IsComplete())

	got, err := svc.Get(tm.ID())
	require.NoError(t, err)
	assert.True(t, got.IsComplete())
}

func TestDeleteStopsTickTask(t *testing.T) {
	emitter := newStubEmitter(nil)
	svc, _ := newTestService(t, emitter)

	tm := svc.Make(time.Hour, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return emitter.count(event.KindUpdate) > 0
	}, waitFor, pollAt)

	deleted, ok := svc.Delete(tm.ID())
	require.True(t, ok)
	assert.Equal(t, tm.ID(), deleted.ID())

	require.Eventually(t, func() bool { return svc.Running() == 0 }, waitFor, pollAt)

	before := len(emitter.all())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, emitter.all(), before)

	_, err = svc.Get(tm.ID())
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestResetStopsTickTaskAndPublishes(t *testing.T) {
	emitter := newStubEmitter(nil)
	svc, _ := newTestService(t, emitter)

	tm := svc.Make(time.Hour, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return svc.Running() == 1 }, waitFor, pollAt)

	reset, err := svc.Reset(tm.ID(), 5*time.Second)
	require.NoError(t, err)
	assert.False(t, reset.Running())
	assert.Equal(t, 5*time.Second, reset.Duration())

	require.Eventually(t, func() bool { return svc.Running() == 0 }, waitFor, pollAt)

	var resetUpdates int
	for _, ev := range emitter.all() {
		if ev.Kind == event.KindUpdate && ev.Timer.Version() == reset.Version() {
			resetUpdates++
			_, running := ev.Timer.Elapsed()
			assert.False(t, running)
		}
	}
	assert.Equal(t, 1, resetUpdates)

	got, err := svc.Get(tm.ID())
	require.NoError(t, err)
	_, hasElapsed := got.Elapsed()
	assert.False(t, hasElapsed)
}

func TestRestartKeepsOneEffectiveTask(t *testing.T) {
	emitter := newStubEmitter(nil)
	logger := &recordingLogger{}
	svc, clk := newTestService(t, emitter, func(c *Config) { c.EventLogger = logger })

	tm := svc.Make(time.Second, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)
	second, err := svc.Start(tm.ID())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stops := logger.stops()
		return len(stops) == 1 && stops[0].Reason == log.StopSuperseded
	}, waitFor, pollAt)
	require.Eventually(t, func() bool { return svc.Running() == 1 }, waitFor, pollAt)

	clk.Advance(2 * time.Second)

	require.Eventually(t, func() bool { return svc.Running() == 0 }, waitFor, pollAt)
	assert.Equal(t, 1, emitter.count(event.KindDone))

	for _, ev := range emitter.all() {
		if ev.Kind == event.KindDone {
			assert.Equal(t, second.Epoch(), ev.Timer.Epoch())
		}
	}
}

func TestEmitFailureStopsTickTask(t *testing.T) {
	emitter := newStubEmitter(errors.New("window closed"))
	logger := &recordingLogger{}
	svc, _ := newTestService(t, emitter, func(c *Config) { c.EventLogger = logger })

	tm := svc.Make(time.Hour, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stops := logger.stops()
		return len(stops) == 1 && stops[0].Reason == log.StopEmitFailed
	}, waitFor, pollAt)
	require.Eventually(t, func() bool { return svc.Running() == 0 }, waitFor, pollAt)

	assert.Len(t, emitter.all(), 1)
	emitter.AssertNumberOfCalls(t, "Emit", 1)

	// The timer stays started; only its task ended.
	got, err := svc.Get(tm.ID())
	require.NoError(t, err)
	assert.True(t, got.Running())
}

func TestStartBusy(t *testing.T) {
	svc, _ := newTestService(t, nil, func(c *Config) { c.MaxRunning = 1 })

	first := svc.Make(time.Hour, "")
	second := svc.Make(time.Hour, "")

	_, err := svc.Start(first.ID())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.Running() == 1 }, waitFor, pollAt)

	_, err = svc.Start(second.ID())
	assert.ErrorIs(t, err, ErrBusy)

	got, err := svc.Get(second.ID())
	require.NoError(t, err)
	assert.False(t, got.Running())
}

func TestRestartAtCapacityKeepsTimerRunning(t *testing.T) {
	emitter := newStubEmitter(nil)
	logger := &recordingLogger{}
	svc, clk := newTestService(t, emitter, func(c *Config) {
		c.MaxRunning = 1
		c.EventLogger = logger
	})

	tm := svc.Make(time.Hour, "")
	other := svc.Make(time.Hour, "")

	_, err := svc.Start(tm.ID())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.Running() == 1 }, waitFor, pollAt)

	clk.Advance(time.Minute)
	restarted, err := svc.Start(tm.ID())
	require.NoError(t, err)
	assert.True(t, restarted.Running())

	elapsed, ok := restarted.Elapsed()
	require.True(t, ok)
	assert.Zero(t, elapsed)

	require.Eventually(t, func() bool {
		stops := logger.stops()
		return len(stops) == 1 && stops[0].Reason == log.StopSuperseded
	}, waitFor, pollAt)
	require.Eventually(t, func() bool { return svc.Running() == 1 }, waitFor, pollAt)

	got, err := svc.Get(tm.ID())
	require.NoError(t, err)
	assert.True(t, got.Running())
	assert.Equal(t, restarted.Epoch(), got.Epoch())

	// The restarted run still holds the only slot.
	_, err = svc.Start(other.ID())
	assert.ErrorIs(t, err, ErrBusy)

	// Completion hands the slot back.
	clk.Advance(2 * time.Hour)
	require.Eventually(t, func() bool { return emitter.count(event.KindDone) == 1 }, waitFor, pollAt)
	require.Eventually(t, func() bool {
		_, err := svc.Start(other.ID())
		return err == nil
	}, waitFor, pollAt)
}

func TestStartBusyUnknownReportsNotFound(t *testing.T) {
	svc, _ := newTestService(t, nil, func(c *Config) { c.MaxRunning = 1 })

	tm := svc.Make(time.Hour, "")
	_, err := svc.Start(tm.ID())
	require.NoError(t, err)

	_, err = svc.Start(uuid.New())
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestCloseStopsTickTasks(t *testing.T) {
	emitter := newStubEmitter(nil)
	logger := &recordingLogger{}
	svc, _ := newTestService(t, emitter, func(c *Config) { c.EventLogger = logger })

	for i := 0; i < 3; i++ {
		tm := svc.Make(time.Hour, "")
		_, err := svc.Start(tm.ID())
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return svc.Running() == 3 }, waitFor, pollAt)

	require.NoError(t, svc.Close())
	assert.Equal(t, 0, svc.Running())

	stops := logger.stops()
	require.Len(t, stops, 3)
	for _, s := range stops {
		assert.Equal(t, log.StopShutdown, s.Reason)
	}

	tm := svc.Make(time.Second, "")
	_, err := svc.Start(tm.ID())
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, svc.Close())
}

func TestEventLogRecordsCommands(t *testing.T) {
	logger := &recordingLogger{}
	svc, _ := newTestService(t, nil, func(c *Config) { c.EventLogger = logger })

	tm := svc.Make(time.Minute, "")
	_, err := svc.Reset(tm.ID(), 2*time.Minute)
	require.NoError(t, err)
	_, err = svc.Start(uuid.New())
	require.Error(t, err)
	_, ok := svc.Delete(tm.ID())
	require.True(t, ok)

	assert.Equal(t, []log.Kind{
		log.KindCreated,
		log.KindReset,
		log.KindError,
		log.KindDeleted,
	}, logger.kinds())

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Equal(t, "start", logger.events[2].Error.Operation)
	assert.Equal(t, tm.ID().String(), logger.events[3].TimerID)
	require.NotNil(t, logger.events[1].Snapshot)
	assert.Equal(t, timer.DurationOf(2*time.Minute), logger.events[1].Snapshot.Duration)
}

func TestConcurrentCommands(t *testing.T) {
	svc, clk := newTestService(t, event.NewHub())

	timers := make([]timer.Timer, 8)
	for i := range timers {
		timers[i] = svc.Make(time.Second, "")
	}

	var wg sync.WaitGroup
	for _, tm := range timers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = svc.Start(id)
				_, _ = svc.Reset(id, time.Second)
			}
			_, _ = svc.Start(id)
		}(tm.ID())
	}
	wg.Wait()

	clk.Advance(2 * time.Second)
	require.Eventually(t, func() bool {
		for _, tm := range svc.List() {
			if !tm.IsComplete() {
				return false
			}
		}
		return svc.Running() == 0
	}, waitFor, pollAt)
}
