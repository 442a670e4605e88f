//go:build linux
// +build linux

// File: reactor/epoll_linux_test.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestEpollPollerReadiness(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	p, err := newEpollPoller()
	if err != nil {
		t.Fatalf("newEpollPoller: %v", err)
	}
	defer p.Close()
	if err := p.Add(fds[0]); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ready, err := p.Wait(nil, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait idle: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("Wait idle returned %v, want empty", ready)
	}

	if _, err := unix.Write(fds[1], []byte{'x'}); err != nil {
		t.Fatalf("write: %v", err)
	}
	ready, err = p.Wait(nil, time.Second)
	if err != nil {
		t.Fatalf("Wait ready: %v", err)
	}
	if len(ready) != 1 || ready[0] != fds[0] {
		t.Fatalf("Wait ready returned %v, want [%d]", ready, fds[0])
	}
	if err := p.Remove(fds[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

// epoll refuses regular files; the downloader depends on that surfacing as
// an Add error to pick the periodic drive path instead.
func TestEpollPollerRejectsRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "payload")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	p, err := newEpollPoller()
	if err != nil {
		t.Fatalf("newEpollPoller: %v", err)
	}
	defer p.Close()

	if err := p.Add(int(f.Fd())); !errors.Is(err, unix.EPERM) {
		t.Fatalf("Add regular file err = %v, want EPERM", err)
	}
}

func TestReactorEpollBackend(t *testing.T) {
	r, err := New(Config{Backend: BackendEpoll})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	runDone := make(chan error, 1)
	go func() { runDone <- r.Run() }()

	executed := false
	if err := r.Submit(func() { executed = true }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !executed {
		t.Fatal("Submit returned before the thunk executed")
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitRun(t, runDone)
}
