//go:build unix

// File: reactor/select_unix.go
// Author: momentics <momentics@gmail.com>
//
// Minimal portable poll backend over select(2). Richer backends (epoll,
// completion ports) implement the same api.Poller contract and are chosen
// once at construction, never discovered at runtime.

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-dl/api"
)

// fdSetSize mirrors FD_SETSIZE, the descriptor ceiling of select(2).
const fdSetSize = 1024

type selectPoller struct {
	fds map[int]struct{}
}

func newSelectPoller() (api.Poller, error) {
	return &selectPoller{fds: make(map[int]struct{})}, nil
}

func (p *selectPoller) Add(fd int) error {
	if fd < 0 || fd >= fdSetSize {
		return fmt.Errorf("select add fd %d: %w", fd, api.ErrDescriptorLimit)
	}
	p.fds[fd] = struct{}{}
	return nil
}

func (p *selectPoller) Remove(fd int) error {
	if _, ok := p.fds[fd]; !ok {
		return fmt.Errorf("select remove fd %d: %w", fd, api.ErrNotRegistered)
	}
	delete(p.fds, fd)
	return nil
}

func (p *selectPoller) Wait(dst []int, timeout time.Duration) ([]int, error) {
	for {
		// The kernel mutates both the set and the timeout, so both are
		// rebuilt before every attempt.
		var rset unix.FdSet
		nfd := 0
		for fd := range p.fds {
			rset.Set(fd)
			if fd >= nfd {
				nfd = fd + 1
			}
		}
		var tv *unix.Timeval
		if timeout >= 0 {
			t := unix.NsecToTimeval(timeout.Nanoseconds())
			tv = &t
		}
		n, err := unix.Select(nfd, &rset, nil, nil, tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select wait: %w", err)
		}
		dst = dst[:0]
		if n == 0 {
			return dst, nil
		}
		for fd := range p.fds {
			if rset.IsSet(fd) {
				dst = append(dst, fd)
			}
		}
		return dst, nil
	}
}

func (p *selectPoller) Close() error {
	p.fds = nil
	return nil
}
