// File: reactor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package reactor implements the single-threaded event dispatch loop at the
// heart of hioload-dl: readiness multiplexing over registered descriptors,
// periodic callbacks executed once per iteration, and thunks submitted from
// foreign goroutines with blocking exactly-once delivery onto the dispatcher.
//
// Two poll backends exist behind the api.Poller contract: a portable
// select(2) backend and a Linux epoll(7) variant. The backend is chosen once
// at construction through Config — never by global discovery. Platforms with
// no backend fail construction with api.ErrPollerUnavailable.
package reactor
