// File: downloader/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package downloader implements the admission-controlled transfer scheduler.
// Concurrency is capped per destination and globally; excess requests wait
// in per-destination FIFO queues and are promoted as slots free up. Active
// transfers are driven by the reactor one bounded chunk at a time, through a
// descriptor registration when the handle exposes one, else through a
// periodic callback.
//
// All scheduler state belongs to the reactor's dispatcher goroutine. Call
// Download and Cancel before the loop starts, from a reactor callback, or
// inside Reactor.Submit.
package downloader
