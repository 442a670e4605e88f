// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error values and the structured transfer error used across the
// library.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrPollerUnavailable is the fatal configuration failure raised when
	// no readiness-multiplexing backend exists on the host. No reactor is
	// produced in that case.
	ErrPollerUnavailable = fmt.Errorf("no readiness-multiplexing backend available on this platform")

	// ErrDescriptorLimit reports a descriptor the select backend cannot
	// represent in its fixed-size fd set.
	ErrDescriptorLimit = fmt.Errorf("descriptor exceeds select fd set capacity")

	// ErrNotRegistered reports removal of a descriptor or periodic callback
	// that is not currently registered.
	ErrNotRegistered = fmt.Errorf("registration not found")

	// ErrReactorClosed reports use of a reactor after Close.
	ErrReactorClosed = fmt.Errorf("reactor is closed")

	// ErrReactorStopped reports a submission that can no longer execute
	// because the dispatch loop has already exited.
	ErrReactorStopped = fmt.Errorf("reactor loop stopped")
)

// TransferError wraps a per-transfer fault with its addressing context. It
// is delivered through the user callback and never aborts the dispatch loop.
type TransferError struct {
	Address     string
	Destination string
	Err         error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.Address, e.Err)
}

// Unwrap exposes the underlying fault for errors.Is/errors.As chains.
func (e *TransferError) Unwrap() error {
	return e.Err
}
