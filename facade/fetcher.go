// File: facade/fetcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unified facade over the reactor and downloader. It wires the dispatch
// loop, the scheduler, the address openers and a sink factory from one
// configuration, owns the dispatcher goroutine, and re-exposes scheduling
// as calls that are safe from any goroutine.

package facade

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-dl/api"
	"github.com/momentics/hioload-dl/control"
	"github.com/momentics/hioload-dl/downloader"
	"github.com/momentics/hioload-dl/reactor"
	"github.com/momentics/hioload-dl/sink"
	"github.com/momentics/hioload-dl/transport"
)

// Config carries the construction parameters of a Fetcher. Zero values are
// filled with the library defaults.
type Config struct {
	// Reactor configures the dispatch loop.
	Reactor reactor.Config
	// Downloader configures limits and wiring. A nil Opener becomes the
	// default scheme router; a nil Metrics becomes a fresh registry.
	Downloader downloader.Config
	// SinkFactory builds the sink per transfer. nil means file sinks under
	// TargetDir.
	SinkFactory api.SinkFactory
	// TargetDir receives downloaded files when SinkFactory is nil. Empty
	// means the current directory.
	TargetDir string
	// Logger is shared by every component that was not given its own.
	Logger *zap.Logger
}

// Fetcher aggregates reactor, downloader, transport and sink wiring behind
// a single object with a Start/Stop lifecycle.
//
// Before Start, Download and Cancel execute on the caller's goroutine, which
// must be the only one touching the Fetcher. After Start they are routed
// through the dispatcher and become safe from any goroutine.
type Fetcher struct {
	reactor *reactor.Reactor
	dl      *downloader.Downloader
	sinks   api.SinkFactory
	metrics *control.MetricsRegistry
	log     *zap.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	runErr  chan error
}

// New constructs a Fetcher and everything underneath it: poll backend,
// wakeup channel, reactor, downloader, opener and sink factory.
func New(cfg Config) (*Fetcher, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rcfg := cfg.Reactor
	if rcfg.Logger == nil {
		rcfg.Logger = log
	}
	r, err := reactor.New(rcfg)
	if err != nil {
		return nil, err
	}

	dcfg := cfg.Downloader
	if dcfg.Opener == nil {
		dcfg.Opener = transport.Default(nil)
	}
	if dcfg.Logger == nil {
		dcfg.Logger = log
	}
	if dcfg.Metrics == nil {
		dcfg.Metrics = control.NewMetricsRegistry()
	}
	d, err := downloader.New(r, dcfg)
	if err != nil {
		r.Close()
		return nil, err
	}

	sinks := cfg.SinkFactory
	if sinks == nil {
		dir := cfg.TargetDir
		if dir == "" {
			dir = "."
		}
		sinks = sink.NewFileSinkFactory(dir)
	}

	return &Fetcher{
		reactor: r,
		dl:      d,
		sinks:   sinks,
		metrics: dcfg.Metrics,
		log:     log,
	}, nil
}

// Start launches the dispatch loop on an internal goroutine. Subsequent
// calls have no effect.
func (f *Fetcher) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return api.ErrReactorStopped
	}
	if f.started {
		return nil
	}
	f.runErr = make(chan error, 1)
	go func() { f.runErr <- f.reactor.Run() }()
	f.started = true
	return nil
}

// Download schedules one transfer and returns its request, usable with
// Cancel. The callback runs on the dispatcher goroutine once the transfer
// reaches a terminal state; nil means the outcome is not wanted.
func (f *Fetcher) Download(address string, cb api.Callback) (*downloader.Request, error) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return nil, api.ErrReactorStopped
	}
	started := f.started
	f.mu.Unlock()

	if !started {
		// No dispatcher is running yet, so the caller's goroutine is the
		// serialization domain.
		return f.dl.Download(address, f.sinks, cb), nil
	}
	var req *downloader.Request
	if err := f.reactor.Submit(func() { req = f.dl.Download(address, f.sinks, cb) }); err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel aborts the request if it is still queued or active and reports
// whether a cancellation took place.
func (f *Fetcher) Cancel(req *downloader.Request) (bool, error) {
	if req == nil {
		return false, fmt.Errorf("cancel: nil request")
	}
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return false, api.ErrReactorStopped
	}
	started := f.started
	f.mu.Unlock()

	if !started {
		return f.dl.Cancel(req), nil
	}
	var ok bool
	if err := f.reactor.Submit(func() { ok = f.dl.Cancel(req) }); err != nil {
		return false, err
	}
	return ok, nil
}

// Metrics returns a point-in-time copy of the transfer counters.
func (f *Fetcher) Metrics() map[string]int64 {
	return f.metrics.GetSnapshot()
}

// Stop halts the dispatch loop and blocks until it has exited. It must not
// be called from a transfer callback; callbacks that want to end the run
// leave that to the goroutine driving the Fetcher. Stopping a Fetcher that
// never started, or stopping twice, is a no-op.
func (f *Fetcher) Stop() error {
	f.mu.Lock()
	if !f.started || f.stopped {
		f.stopped = true
		f.mu.Unlock()
		return nil
	}
	f.stopped = true
	f.mu.Unlock()

	if err := f.reactor.Stop(); err != nil {
		return err
	}
	return <-f.runErr
}

// Close stops the loop if needed and releases the poll backend and wakeup
// channel.
func (f *Fetcher) Close() error {
	serr := f.Stop()
	cerr := f.reactor.Close()
	if serr != nil {
		return serr
	}
	return cerr
}
