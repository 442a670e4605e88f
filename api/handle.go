// File: api/handle.go
// Author: momentics <momentics@gmail.com>
//
// Transfer-source contracts. An Opener turns an address into a readable
// Handle; handles backed by real sockets or files additionally expose a
// descriptor the reactor can multiplex on.

package api

import "io"

// Handle is an open transfer source. Read returns io.EOF at end of data;
// every handle is closed exactly once by the downloader when its transfer
// reaches a terminal state.
type Handle interface {
	io.ReadCloser
}

// Waitable is implemented by handles whose readiness can be observed by a
// Poller. Descriptor reports ok=false when no descriptor is available (the
// transfer is then driven by periodic callbacks instead).
type Waitable interface {
	Descriptor() (fd int, ok bool)
}

// Sized is implemented by handles that know the total transfer length up
// front, for example from an HTTP Content-Length header. Length reports
// ok=false when the size is unknown.
type Sized interface {
	Length() (n int64, ok bool)
}

// Opener resolves an address into a transfer handle. The suggested name is
// a hint for sink factories (for HTTP it is derived from the
// Content-Disposition header, falling back to the URL basename).
type Opener interface {
	Open(address string) (h Handle, suggestedName string, err error)
}
