package registry

import (
	"bytes"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modzero/timers-go/pkg/clock"
	"github.com/modzero/timers-go/pkg/timer"
)

// Registry errors.
var (
	ErrNotFound   = errors.New("timer not found")
	ErrSuperseded = errors.New("timer run superseded")
)

// Run identifies one started epoch of a timer.
type Run struct {
	// ID is the timer's identifier.
	ID uuid.UUID

	// Epoch is the timer epoch this run started.
	Epoch uint64

	// Timer is the snapshot returned by the start.
	Timer timer.Timer

	// Stopped is closed once the run is superseded by a restart, a reset or
	// a delete.
	Stopped <-chan struct{}
}

type entry struct {
	timer timer.Timer

	// stop is closed when the current run ends; nil while idle.
	stop chan struct{}
}

// halt closes the current run's stop channel, if any.
func (e *entry) halt() {
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// Registry maps timer identifiers to timer state.
type Registry struct {
	mu     sync.Mutex
	clock  clock.Clock
	timers map[uuid.UUID]*entry
}

// New creates an empty registry reading time from clk.
// A nil clk uses the real clock.
func New(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Registry{
		clock:  clk,
		timers: make(map[uuid.UUID]*entry),
	}
}

// Make creates an idle timer and stores it.
func (r *Registry) Make(d time.Duration, label string) timer.Timer {
	t := timer.New(d, label)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.timers[t.ID()] = &entry{timer: t}
	return t
}

// Get returns the current snapshot of a timer.
func (r *Registry) Get(id uuid.UUID) (timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[id]
	if !exists {
		return timer.Timer{}, ErrNotFound
	}
	return e.timer, nil
}

// List returns snapshots of all timers ordered by identifier.
func (r *Registry) List() []timer.Timer {
	r.mu.Lock()
	result := make([]timer.Timer, 0, len(r.timers))
	for _, e := range r.timers {
		result = append(result, e.timer)
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].ID(), result[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return result
}

// Len returns the number of timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Delete removes a timer and stops its current run.
// It returns the last snapshot, or false if the timer did not exist.
func (r *Registry) Delete(id uuid.UUID) (timer.Timer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[id]
	if !exists {
		return timer.Timer{}, false
	}

	e.halt()
	delete(r.timers, id)
	return e.timer, true
}

// Start starts or restarts a timer.
func (r *Registry) Start(id uuid.UUID) (timer.Timer, error) {
	run, err := r.StartRun(id)
	if err != nil {
		return timer.Timer{}, err
	}
	return run.Timer, nil
}

// StartRun starts or restarts a timer and returns the new run.
// Any previous run of the timer is stopped.
func (r *Registry) StartRun(id uuid.UUID) (Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[id]
	if !exists {
		return Run{}, ErrNotFound
	}

	e.halt()
	e.timer = e.timer.Start(r.clock.Now())
	e.stop = make(chan struct{})

	return Run{
		ID:      id,
		Epoch:   e.timer.Epoch(),
		Timer:   e.timer,
		Stopped: e.stop,
	}, nil
}

// Reset returns a timer to idle with a new duration, stopping its run.
func (r *Registry) Reset(id uuid.UUID, d time.Duration) (timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[id]
	if !exists {
		return timer.Timer{}, ErrNotFound
	}

	e.halt()
	e.timer = e.timer.Reset(d)
	return e.timer, nil
}

// Tick advances a running timer.
func (r *Registry) Tick(id uuid.UUID) (timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[id]
	if !exists {
		return timer.Timer{}, ErrNotFound
	}
	return r.tickLocked(e)
}

// TickRun advances a timer on behalf of run. It fails with ErrSuperseded if
// the timer has been restarted or reset since run began.
func (r *Registry) TickRun(run Run) (timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[run.ID]
	if !exists {
		return timer.Timer{}, ErrNotFound
	}
	if e.timer.Epoch() != run.Epoch {
		return timer.Timer{}, ErrSuperseded
	}
	return r.tickLocked(e)
}

// Abort resets the timer to idle with its current duration, but only if run
// is still current.
func (r *Registry) Abort(run Run) (timer.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.timers[run.ID]
	if !exists {
		return timer.Timer{}, ErrNotFound
	}
	if e.timer.Epoch() != run.Epoch {
		return timer.Timer{}, ErrSuperseded
	}

	e.halt()
	e.timer = e.timer.Reset(e.timer.Duration())
	return e.timer, nil
}

func (r *Registry) tickLocked(e *entry) (timer.Timer, error) {
	next, err := e.timer.Tick(r.clock.Now())
	if err != nil {
		return timer.Timer{}, err
	}
	e.timer = next
	return next, nil
}
