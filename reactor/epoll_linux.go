//go:build linux
// +build linux

// File: reactor/epoll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll poll backend. Level-triggered on purpose: a drive step reads
// one bounded chunk per readiness report, so the descriptor must keep
// reporting ready while data remains buffered.

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-dl/api"
)

const maxEpollEvents = 128

type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newEpollPoller() (api.Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEpollEvents),
	}, nil
}

// Add registers fd for read readiness. epoll refuses regular files with
// EPERM; the error is returned so callers can fall back to periodic polling.
func (p *epollPoller) Add(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del fd %d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Wait(dst []int, timeout time.Duration) ([]int, error) {
	msec := -1
	if timeout >= 0 {
		msec = int(timeout / time.Millisecond)
	}
	for {
		n, err := unix.EpollWait(p.epfd, p.events, msec)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("epoll wait: %w", err)
		}
		dst = dst[:0]
		for i := 0; i < n; i++ {
			dst = append(dst, int(p.events[i].Fd))
		}
		return dst, nil
	}
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
