// File: reactor/backend.go
// Author: momentics <momentics@gmail.com>
//
// Backend selection for the reactor poll loop. The backend is an explicit
// construction parameter; nothing is discovered through global registries.

package reactor

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval bounds a poll wait while periodic callbacks are
// registered, so busy-polled transfers keep being driven even when no
// descriptor turns ready.
const DefaultPollInterval = time.Millisecond

// Backend identifies the poll mechanism driving a Reactor.
type Backend int

const (
	// BackendSelect polls with select(2) and works on every unix platform.
	BackendSelect Backend = iota
	// BackendEpoll polls with epoll(7) and is available on Linux only.
	BackendEpoll
)

// String implements fmt.Stringer.
func (b Backend) String() string {
	switch b {
	case BackendSelect:
		return "select"
	case BackendEpoll:
		return "epoll"
	default:
		return "unknown"
	}
}

// ParseBackend maps a configuration name onto its Backend constant.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "select":
		return BackendSelect, nil
	case "epoll":
		return BackendEpoll, nil
	default:
		return BackendSelect, fmt.Errorf("unknown reactor backend %q", name)
	}
}

// Config carries the construction parameters of a Reactor.
type Config struct {
	// Backend chooses the poll mechanism. DefaultConfig picks select(2),
	// the backend available everywhere the reactor builds.
	Backend Backend
	// PollInterval caps a single poll wait while periodic callbacks exist.
	// Without periodic registrations the loop blocks until readiness.
	// Zero or negative means DefaultPollInterval.
	PollInterval time.Duration
	// Logger receives dispatch diagnostics. nil means zap.NewNop().
	Logger *zap.Logger
}

// DefaultConfig returns the portable reactor configuration.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendSelect,
		PollInterval: DefaultPollInterval,
		Logger:       nil,
	}
}
