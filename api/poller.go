// File: api/poller.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract readiness-multiplexing contract implemented by the
// concrete poll backends (select, epoll). A Poller watches a set of file
// descriptors and blocks until at least one of them is ready to read.

package api

import "time"

// Poller is the single capability a concrete reactor backend must supply:
// wait for readiness over the registered descriptor set.
//
// Implementations are not safe for concurrent use; all calls happen on the
// dispatcher goroutine that owns the reactor loop.
type Poller interface {
	// Add registers fd for readiness notifications. It reports an error
	// when the backend cannot watch this descriptor (for example epoll
	// refuses regular files); callers may then fall back to periodic
	// polling.
	Add(fd int) error

	// Remove drops fd from the watched set.
	Remove(fd int) error

	// Wait blocks until at least one registered descriptor is readable and
	// returns the ready subset, reusing dst when it is large enough. A
	// negative timeout blocks until readiness; otherwise Wait returns after
	// at most timeout, possibly with an empty result.
	Wait(dst []int, timeout time.Duration) ([]int, error)

	// Close releases backend resources (epoll instance, fd bookkeeping).
	Close() error
}
