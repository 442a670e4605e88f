//go:build !unix

// File: reactor/poller_stub.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-dl/api"
)

func newPoller(b Backend) (api.Poller, error) {
	return nil, fmt.Errorf("poll backend %s: %w", b, api.ErrPollerUnavailable)
}
