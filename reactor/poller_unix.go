//go:build unix

// File: reactor/poller_unix.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-dl/api"
)

// newPoller builds the poll backend named by the configuration. The choice
// is made exactly once, at reactor construction.
func newPoller(b Backend) (api.Poller, error) {
	switch b {
	case BackendSelect:
		return newSelectPoller()
	case BackendEpoll:
		return newEpollPoller()
	default:
		return nil, fmt.Errorf("poll backend %d: %w", int(b), api.ErrPollerUnavailable)
	}
}
