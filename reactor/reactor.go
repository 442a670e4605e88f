// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Single-threaded dispatch core. One goroutine owns the loop; every mutation
// of descriptor and periodic tables happens on that goroutine. The only
// cross-thread entry points are Submit and Stop, both funneled through the
// wakeup channel.

package reactor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-dl/api"
	"github.com/momentics/hioload-dl/pool"
)

// thunk is one cross-thread submission: the function plus the channel closed
// once the dispatcher has settled it. ran stays false when the loop exited
// before the thunk could execute.
type thunk struct {
	fn   func()
	done chan struct{}
	ran  bool
}

// Reactor multiplexes descriptor readiness, once-per-iteration periodic
// callbacks, and cross-thread thunks on a single dispatcher goroutine.
//
// AddFd, RemoveFd, AddPeriodic and RemovePeriodic mutate dispatcher-owned
// tables and must only be called on the dispatcher goroutine (inside a
// callback or a submitted thunk) or before Run starts.
type Reactor struct {
	poller api.Poller
	wake   *WakeupChannel
	ids    *pool.IDPool
	log    *zap.Logger

	mu         sync.Mutex
	pending    []*thunk
	closed     bool
	terminated bool

	// Dispatcher-owned state below; Run's goroutine is the only writer.
	fdCallbacks map[int]func()
	periodic    map[int]func()
	running     bool

	pollInterval time.Duration
	ready        []int
	periodicIDs  []int
}

// New builds a reactor over the configured poll backend. It fails with
// api.ErrPollerUnavailable when the host offers no readiness mechanism.
func New(cfg Config) (*Reactor, error) {
	p, err := newPoller(cfg.Backend)
	if err != nil {
		return nil, err
	}
	w, err := NewWakeupChannel()
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := p.Add(w.RecvFd()); err != nil {
		p.Close()
		w.Close()
		return nil, fmt.Errorf("register wakeup descriptor: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Reactor{
		poller:       p,
		wake:         w,
		ids:          pool.NewIDPool(),
		log:          log,
		fdCallbacks:  make(map[int]func()),
		periodic:     make(map[int]func()),
		pollInterval: interval,
	}, nil
}

// AddFd registers cb to run whenever fd reports readable. The error from the
// backend is surfaced so callers can fall back to a periodic registration.
func (r *Reactor) AddFd(fd int, cb func()) error {
	if err := r.poller.Add(fd); err != nil {
		return err
	}
	r.fdCallbacks[fd] = cb
	return nil
}

// RemoveFd drops the registration for fd.
func (r *Reactor) RemoveFd(fd int) error {
	if _, ok := r.fdCallbacks[fd]; !ok {
		return fmt.Errorf("fd %d: %w", fd, api.ErrNotRegistered)
	}
	delete(r.fdCallbacks, fd)
	return r.poller.Remove(fd)
}

// AddPeriodic registers cb to run once per loop iteration and returns the id
// keying the registration.
func (r *Reactor) AddPeriodic(cb func()) int {
	id := r.ids.Get()
	r.periodic[id] = cb
	return id
}

// RemovePeriodic drops a periodic registration and recycles its id.
func (r *Reactor) RemovePeriodic(id int) error {
	if _, ok := r.periodic[id]; !ok {
		return fmt.Errorf("periodic %d: %w", id, api.ErrNotRegistered)
	}
	delete(r.periodic, id)
	r.ids.Release(id)
	return nil
}

// Submit runs fn on the dispatcher goroutine and blocks the caller until fn
// has executed. fn observes exclusive access to all reactor-owned state.
// Submit from the dispatcher goroutine itself deadlocks; shutdown requests
// from callbacks go through Stop instead. When the loop exits before fn got
// its turn, Submit returns ErrReactorStopped and fn never runs.
func (r *Reactor) Submit(fn func()) error {
	t, err := r.enqueue(fn)
	if err != nil {
		return err
	}
	<-t.done
	if !t.ran {
		return api.ErrReactorStopped
	}
	return nil
}

// Stop requests loop exit. The running flag is only ever cleared by a thunk
// on the dispatcher goroutine, so Run returns from within its own iteration,
// never torn down mid-dispatch. Stop does not wait for execution, making it
// safe both from foreign goroutines and from callbacks already running on
// the dispatcher. Stopping a loop that already exited is a no-op.
func (r *Reactor) Stop() error {
	_, err := r.enqueue(func() { r.running = false })
	if errors.Is(err, api.ErrReactorStopped) {
		return nil
	}
	return err
}

// enqueue appends one thunk and signals the wakeup channel.
func (r *Reactor) enqueue(fn func()) (*thunk, error) {
	t := &thunk{fn: fn, done: make(chan struct{})}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, api.ErrReactorClosed
	}
	if r.terminated {
		r.mu.Unlock()
		return nil, api.ErrReactorStopped
	}
	r.pending = append(r.pending, t)
	r.mu.Unlock()
	if err := r.wake.Wake(); err != nil {
		return nil, err
	}
	return t, nil
}

// Run executes the dispatch loop on the calling goroutine until a Stop thunk
// clears the running flag. Each iteration polls, drains submitted thunks in
// FIFO order, runs the periodic snapshot, then dispatches ready descriptors.
// Once Run returns the loop is gone for good: submissions that raced with
// the exit are settled with ErrReactorStopped, and later Submit and Stop
// calls fail the same way.
func (r *Reactor) Run() error {
	defer r.failPending()
	r.running = true
	r.log.Debug("reactor loop started")
	for r.running {
		timeout := time.Duration(-1)
		if len(r.periodic) > 0 {
			timeout = r.pollInterval
		}
		ready, err := r.poller.Wait(r.ready[:0], timeout)
		if err != nil {
			return err
		}
		r.ready = ready

		r.runThunks()
		r.runPeriodic()

		for _, fd := range ready {
			cb, ok := r.fdCallbacks[fd]
			if !ok {
				// Stale or wakeup readiness; wake bytes are consumed
				// by the thunk drain, never dispatched here.
				continue
			}
			r.dispatch(cb)
		}
	}
	r.log.Debug("reactor loop stopped")
	return nil
}

// runThunks drains the queue swapped out under the lock, consuming one
// wakeup byte per executed thunk.
func (r *Reactor) runThunks() {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, t := range batch {
		if err := r.wake.consume(); err != nil {
			r.log.Error("wakeup consume", zap.Error(err))
		}
		r.dispatch(t.fn)
		t.ran = true
		close(t.done)
	}
}

// failPending marks the reactor terminated and settles every thunk the exited
// loop will never execute, so their submitters unblock with an error instead
// of waiting forever.
func (r *Reactor) failPending() {
	r.mu.Lock()
	r.terminated = true
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, t := range batch {
		close(t.done)
	}
}

// runPeriodic invokes the periodic callbacks over a stable id snapshot, so
// callbacks may add or remove registrations mid-iteration. Entries
// deregistered by an earlier callback of the same iteration are skipped;
// entries added during the iteration first run on the next one.
func (r *Reactor) runPeriodic() {
	if len(r.periodic) == 0 {
		return
	}
	ids := r.periodicIDs[:0]
	for id := range r.periodic {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	r.periodicIDs = ids
	for _, id := range ids {
		cb, ok := r.periodic[id]
		if !ok {
			continue
		}
		r.dispatch(cb)
	}
}

// dispatch contains callback panics so one misbehaving transfer cannot halt
// the loop.
func (r *Reactor) dispatch(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("callback panic contained", zap.Any("panic", rec))
		}
	}()
	fn()
}

// Close releases the poll backend and the wakeup channel and fails all
// future Submit/Stop calls. Stop the loop before closing; Close does not
// synchronize with a running dispatcher.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	perr := r.poller.Close()
	werr := r.wake.Close()
	if perr != nil {
		return perr
	}
	return werr
}
