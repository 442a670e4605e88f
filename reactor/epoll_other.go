//go:build unix && !linux

// File: reactor/epoll_other.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-dl/api"
)

func newEpollPoller() (api.Poller, error) {
	return nil, fmt.Errorf("epoll backend: %w", api.ErrPollerUnavailable)
}
