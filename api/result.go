// File: api/result.go
// Author: momentics <momentics@gmail.com>
//
// Terminal-outcome types delivered to user callbacks. A transfer reports
// exactly one Result; nothing is ever returned through Download itself.

package api

// Outcome enumerates the terminal states of a transfer.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result describes the terminal state of one transfer.
type Result struct {
	// Address is the original download address.
	Address string
	// Destination is the admission-control key the transfer was counted
	// under (normally the remote host).
	Destination string
	// Path is the sink name (file path, object key). Empty when the
	// transfer failed before a sink existed.
	Path string
	// Outcome tells how the transfer ended.
	Outcome Outcome
	// Err carries the transfer fault for OutcomeFailed, nil otherwise.
	Err error
}

// Callback receives the Result of one transfer. It runs on the dispatcher
// goroutine and must not block; a nil Callback is permitted and means the
// caller does not care about the outcome.
type Callback func(Result)
