// File: api/sink.go
// Author: momentics <momentics@gmail.com>
//
// Byte-sink contracts for the receiving side of a transfer.

package api

import "io"

// Sink receives the bytes of one transfer. Name identifies where the bytes
// went (a file path, an object key) and is reported back through the
// completion callback.
type Sink interface {
	io.WriteCloser
	Name() string
}

// SinkFactory builds the sink for one transfer once its handle is open.
// The suggested name originates from the Opener; factories are free to
// ignore it.
type SinkFactory func(h Handle, address, suggestedName string) (Sink, error)
