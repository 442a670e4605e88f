// File: downloader/downloader.go
// Author: momentics <momentics@gmail.com>
//
// Admission-controlled transfer scheduler over the reactor. Counters and
// queues are dispatcher-owned; the completion hook reuses freed slots for
// queued peers before releasing capacity to the sweep.

package downloader

import (
	"fmt"
	"io"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-dl/api"
	"github.com/momentics/hioload-dl/control"
	"github.com/momentics/hioload-dl/pool"
	"github.com/momentics/hioload-dl/reactor"
)

// Defaults mirror the admission limits and read size the scheduler was
// designed around.
const (
	DefaultMaxPerDestination = 5
	DefaultMaxTotal          = 20
	DefaultChunkSize         = 9096
)

var errNilSinkFactory = fmt.Errorf("nil sink factory")

// Config carries the construction parameters of a Downloader.
type Config struct {
	// MaxPerDestination caps concurrent transfers per destination.
	MaxPerDestination int
	// MaxTotal caps concurrent transfers across all destinations.
	MaxTotal int
	// ChunkSize bounds the bytes moved per drive step.
	ChunkSize int
	// Opener resolves addresses into transfer handles. Required.
	Opener api.Opener
	// Logger receives scheduler diagnostics. nil means zap.NewNop().
	Logger *zap.Logger
	// Metrics receives transfer counters. nil means a private registry.
	Metrics *control.MetricsRegistry
}

// DefaultConfig returns the standard limits. The Opener must still be set.
func DefaultConfig() Config {
	return Config{
		MaxPerDestination: DefaultMaxPerDestination,
		MaxTotal:          DefaultMaxTotal,
		ChunkSize:         DefaultChunkSize,
	}
}

// transfer binds the live pieces of one active request.
type transfer struct {
	req    *Request
	handle api.Handle
	sink   api.Sink
	fd     int // registered descriptor, -1 when periodic
	pid    int // periodic registration id, -1 when descriptor-driven
}

// Downloader schedules transfers under per-destination and global caps.
// Invariants between dispatched callbacks: activeByDestination[d] never
// exceeds maxPerDestination, activeTotal never exceeds maxTotal, and every
// counted transfer holds exactly one live reactor registration.
type Downloader struct {
	reactor *reactor.Reactor
	opener  api.Opener
	log     *zap.Logger
	metrics *control.MetricsRegistry
	buffers *pool.BytePool

	maxPerDestination int
	maxTotal          int

	activeByDestination  map[string]int
	activeTotal          int
	pendingByDestination map[string]*queue.Queue
	active               map[*Request]*transfer
}

// New builds a Downloader scheduling onto r.
func New(r *reactor.Reactor, cfg Config) (*Downloader, error) {
	if r == nil {
		return nil, fmt.Errorf("downloader: nil reactor")
	}
	if cfg.Opener == nil {
		return nil, fmt.Errorf("downloader: nil opener")
	}
	if cfg.MaxPerDestination <= 0 {
		cfg.MaxPerDestination = DefaultMaxPerDestination
	}
	if cfg.MaxTotal <= 0 {
		cfg.MaxTotal = DefaultMaxTotal
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = control.NewMetricsRegistry()
	}
	return &Downloader{
		reactor:              r,
		opener:               cfg.Opener,
		log:                  log,
		metrics:              metrics,
		buffers:              pool.NewBytePool(cfg.ChunkSize),
		maxPerDestination:    cfg.MaxPerDestination,
		maxTotal:             cfg.MaxTotal,
		activeByDestination:  make(map[string]int),
		pendingByDestination: make(map[string]*queue.Queue),
		active:               make(map[*Request]*transfer),
	}, nil
}

// Metrics returns the registry receiving the transfer counters.
func (d *Downloader) Metrics() *control.MetricsRegistry { return d.metrics }

// Download schedules one transfer and never blocks. When destination and
// global slots allow it starts immediately; otherwise the request joins its
// destination's FIFO queue and starts later through promotion. Every outcome
// is delivered through cb; the returned Request carries no outcome, it is
// the token accepted by Cancel.
//
// Dispatcher-thread discipline: call before the loop starts, from a reactor
// callback, or inside Reactor.Submit.
func (d *Downloader) Download(address string, sf api.SinkFactory, cb api.Callback) *Request {
	req := &Request{
		address:     address,
		destination: destinationOf(address),
		sinkFactory: sf,
		callback:    cb,
		state:       StateQueued,
	}
	if d.admit(req.destination) {
		d.begin(req)
	} else {
		d.pendingFor(req.destination).Add(req)
		d.metrics.Add(control.MetricQueued, 1)
		d.log.Debug("request queued",
			zap.String("address", address),
			zap.String("destination", req.destination))
	}
	return req
}

// Cancel withdraws a request. Queued requests tombstone in place and report
// Cancelled at once; active transfers deregister, close handle and sink, and
// release their slot through the completion hook. Terminal requests return
// false. Dispatcher-thread discipline, like Download.
func (d *Downloader) Cancel(req *Request) bool {
	switch req.state {
	case StateQueued:
		d.report(req, "", StateCancelled, nil)
		return true
	case StateActive:
		tr, ok := d.active[req]
		if !ok {
			return false
		}
		d.deregister(tr)
		tr.handle.Close()
		var path string
		if tr.sink != nil {
			path = tr.sink.Name()
			tr.sink.Close()
		}
		d.report(req, path, StateCancelled, nil)
		d.finish(req.destination)
		return true
	default:
		return false
	}
}

// admit reports whether a transfer may start at dest right now.
func (d *Downloader) admit(dest string) bool {
	return d.activeByDestination[dest] < d.maxPerDestination &&
		d.activeTotal < d.maxTotal
}

// begin claims a fresh slot for req and starts its transfer.
func (d *Downloader) begin(req *Request) {
	d.incActive(req.destination)
	d.start(req)
}

// start opens req's handle, builds its sink, and registers the drive
// callback. The slot is already claimed; faults release it through fail.
func (d *Downloader) start(req *Request) {
	req.state = StateActive
	tr := &transfer{req: req, fd: -1, pid: -1}

	handle, suggested, err := d.opener.Open(req.address)
	if err != nil {
		d.fail(tr, err)
		return
	}
	tr.handle = handle

	if req.sinkFactory == nil {
		d.fail(tr, errNilSinkFactory)
		return
	}
	sink, err := req.sinkFactory(handle, req.address, suggested)
	if err != nil {
		d.fail(tr, err)
		return
	}
	tr.sink = sink

	d.register(tr)
	d.active[req] = tr
	d.metrics.Add(control.MetricStarted, 1)
	d.log.Debug("transfer started",
		zap.String("address", req.address),
		zap.String("destination", req.destination),
		zap.Bool("descriptor", tr.fd >= 0))
}

// register wires the drive callback: by descriptor when the handle exposes
// one the backend accepts, else periodically.
func (d *Downloader) register(tr *transfer) {
	if w, ok := tr.handle.(api.Waitable); ok {
		if fd, have := w.Descriptor(); have {
			err := d.reactor.AddFd(fd, func() { d.drive(tr) })
			if err == nil {
				tr.fd = fd
				return
			}
			d.log.Debug("descriptor registration refused, driving periodically",
				zap.Int("fd", fd), zap.Error(err))
		}
	}
	tr.pid = d.reactor.AddPeriodic(func() { d.drive(tr) })
}

// deregister removes tr's reactor registration, releasing any periodic id.
func (d *Downloader) deregister(tr *transfer) {
	if tr.fd >= 0 {
		if err := d.reactor.RemoveFd(tr.fd); err != nil {
			d.log.Error("deregister descriptor", zap.Int("fd", tr.fd), zap.Error(err))
		}
		tr.fd = -1
	}
	if tr.pid >= 0 {
		if err := d.reactor.RemovePeriodic(tr.pid); err != nil {
			d.log.Error("deregister periodic", zap.Int("id", tr.pid), zap.Error(err))
		}
		tr.pid = -1
	}
}

// drive performs one step of an active transfer: read one bounded chunk,
// forward it to the sink, finish on end of data, fail on any fault.
func (d *Downloader) drive(tr *transfer) {
	buf := d.buffers.Get()
	n, err := tr.handle.Read(buf)
	if n > 0 {
		if _, werr := tr.sink.Write(buf[:n]); werr != nil {
			d.buffers.Put(buf)
			d.fail(tr, werr)
			return
		}
		d.metrics.Add(control.MetricBytes, int64(n))
	}
	d.buffers.Put(buf)
	switch err {
	case nil:
	case io.EOF:
		d.complete(tr)
	default:
		d.fail(tr, err)
	}
}

// complete finishes a transfer at end of data. The sink close is part of the
// outcome: a sink that cannot persist what it buffered fails the transfer.
func (d *Downloader) complete(tr *transfer) {
	d.deregister(tr)
	tr.handle.Close()
	path := tr.sink.Name()
	if err := tr.sink.Close(); err != nil {
		d.report(tr.req, path, StateFailed, err)
	} else {
		d.report(tr.req, path, StateCompleted, nil)
	}
	d.finish(tr.req.destination)
}

// fail converts any per-transfer fault into a Failed terminal transition.
// The loop and other transfers are unaffected.
func (d *Downloader) fail(tr *transfer, cause error) {
	d.deregister(tr)
	if tr.handle != nil {
		tr.handle.Close()
	}
	var path string
	if tr.sink != nil {
		path = tr.sink.Name()
		tr.sink.Close()
	}
	d.report(tr.req, path, StateFailed, cause)
	d.finish(tr.req.destination)
}

// report applies the terminal transition and delivers the Result. Runs
// exactly once per request.
func (d *Downloader) report(req *Request, path string, state State, cause error) {
	req.state = state
	delete(d.active, req)
	var resErr error
	if cause != nil {
		resErr = &api.TransferError{
			Address:     req.address,
			Destination: req.destination,
			Err:         cause,
		}
	}
	switch state {
	case StateCompleted:
		d.metrics.Add(control.MetricCompleted, 1)
	case StateFailed:
		d.metrics.Add(control.MetricFailed, 1)
	case StateCancelled:
		d.metrics.Add(control.MetricCancelled, 1)
	}
	d.log.Debug("transfer finished",
		zap.String("address", req.address),
		zap.Stringer("state", state),
		zap.Error(cause))
	d.invoke(req.callback, api.Result{
		Address:     req.address,
		Destination: req.destination,
		Path:        path,
		Outcome:     outcomeOf(state),
		Err:         resErr,
	})
}

// invoke contains user-callback panics so bookkeeping after the report
// still runs.
func (d *Downloader) invoke(cb api.Callback, res api.Result) {
	if cb == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("completion callback panic",
				zap.Any("panic", rec),
				zap.String("address", res.Address))
		}
	}()
	cb(res)
}

// finish is the completion hook: a queued peer of the same destination
// takes over the freed slot with counters unchanged; otherwise the slot is
// released and the sweep drains other queues up to the global slack.
func (d *Downloader) finish(dest string) {
	if next := d.dequeue(dest); next != nil {
		d.metrics.Add(control.MetricPromoted, 1)
		d.start(next)
		return
	}
	d.decActive(dest)
	d.sweep()
}

// sweep starts queued work while slots remain, stopping the instant the
// global cap is reached. Order across destinations is unspecified; within a
// destination strictly FIFO.
func (d *Downloader) sweep() {
	dests := make([]string, 0, len(d.pendingByDestination))
	for dest := range d.pendingByDestination {
		dests = append(dests, dest)
	}
	for _, dest := range dests {
		for {
			if d.activeTotal >= d.maxTotal {
				return
			}
			if d.activeByDestination[dest] >= d.maxPerDestination {
				break
			}
			req := d.dequeue(dest)
			if req == nil {
				break
			}
			d.metrics.Add(control.MetricPromoted, 1)
			d.begin(req)
		}
	}
}

// dequeue pops the oldest live entry of dest's queue, discarding requests
// cancelled while queued. Emptied queues leave the map.
func (d *Downloader) dequeue(dest string) *Request {
	q := d.pendingByDestination[dest]
	if q == nil {
		return nil
	}
	for q.Length() > 0 {
		req := q.Remove().(*Request)
		if req.state != StateQueued {
			continue
		}
		if q.Length() == 0 {
			delete(d.pendingByDestination, dest)
		}
		return req
	}
	delete(d.pendingByDestination, dest)
	return nil
}

// pendingFor returns dest's queue, creating it on first use.
func (d *Downloader) pendingFor(dest string) *queue.Queue {
	q := d.pendingByDestination[dest]
	if q == nil {
		q = queue.New()
		d.pendingByDestination[dest] = q
	}
	return q
}

func (d *Downloader) incActive(dest string) {
	d.activeByDestination[dest]++
	d.activeTotal++
}

func (d *Downloader) decActive(dest string) {
	if n := d.activeByDestination[dest]; n <= 1 {
		delete(d.activeByDestination, dest)
	} else {
		d.activeByDestination[dest] = n - 1
	}
	d.activeTotal--
}

func outcomeOf(s State) api.Outcome {
	switch s {
	case StateFailed:
		return api.OutcomeFailed
	case StateCancelled:
		return api.OutcomeCancelled
	default:
		return api.OutcomeCompleted
	}
}
