// File: downloader/request.go
// Author: momentics <momentics@gmail.com>

package downloader

import (
	"net/url"

	"github.com/momentics/hioload-dl/api"
)

// State tracks a request through its lifecycle. Queued and Active are
// transient; the other three are terminal and each request reaches exactly
// one of them, firing its callback exactly once.
type State int

const (
	StateQueued State = iota
	StateActive
	StateCompleted
	StateFailed
	StateCancelled
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Request is the schedulable unit: one address bound to its sink factory
// and completion callback. Download creates it; it lives in a destination's
// pending queue or as an active transfer until it reaches a terminal state.
// Callers hold it only as a token for Cancel.
type Request struct {
	address     string
	destination string
	sinkFactory api.SinkFactory
	callback    api.Callback
	state       State
}

// Address returns the transfer source address.
func (r *Request) Address() string { return r.address }

// Destination returns the admission-control key the request is scheduled
// under.
func (r *Request) Destination() string { return r.destination }

// State returns the current lifecycle state. Dispatcher-thread discipline
// applies, like every scheduler operation.
func (r *Request) State() State { return r.state }

// destinationOf derives the admission-control key for an address: the remote
// host when the address parses as a URL with one, else the address itself
// (local paths cap only under the global limit).
func destinationOf(address string) string {
	u, err := url.Parse(address)
	if err == nil && u.Host != "" {
		return u.Host
	}
	return address
}
