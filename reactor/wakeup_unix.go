//go:build unix

// File: reactor/wakeup_unix.go
// Author: momentics <momentics@gmail.com>
//
// WakeupChannel is the cross-thread signaling primitive of the reactor: a
// pair of connected bidirectional byte-stream endpoints. Foreign goroutines
// write one byte on the emit end per submitted thunk; the dispatcher selects
// on the receive end and consumes one byte per executed thunk.

package reactor

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// WakeupChannel holds the two connected endpoints as raw descriptors so the
// receive end can be registered with the same poll backend as transfers.
type WakeupChannel struct {
	recvFd int
	emitFd int

	// files pins the dup'd loopback descriptors against their finalizers
	// when the fallback path built the pair; nil on the socketpair path.
	files []*os.File
}

// NewWakeupChannel returns a connected endpoint pair. It prefers the native
// socketpair and falls back to a loopback listener when that fails.
func NewWakeupChannel() (*WakeupChannel, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err == nil {
		return &WakeupChannel{recvFd: fds[0], emitFd: fds[1]}, nil
	}
	return loopbackPair()
}

// loopbackPair builds a connected pair from an ephemeral loopback listener:
// bind, connect, accept, then close the listener. Only the accepted/dialed
// endpoints survive.
func loopbackPair() (*WakeupChannel, error) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("wakeup fallback listen: %w", err)
	}
	defer ln.Close()

	emit, err := net.Dial("tcp4", ln.Addr().String())
	if err != nil {
		return nil, fmt.Errorf("wakeup fallback connect: %w", err)
	}
	recv, err := ln.Accept()
	if err != nil {
		emit.Close()
		return nil, fmt.Errorf("wakeup fallback accept: %w", err)
	}

	recvFile, err := recv.(*net.TCPConn).File()
	if err != nil {
		emit.Close()
		recv.Close()
		return nil, err
	}
	emitFile, err := emit.(*net.TCPConn).File()
	if err != nil {
		recvFile.Close()
		emit.Close()
		recv.Close()
		return nil, err
	}
	// The File() calls dup'd the descriptors; the originals can go.
	recv.Close()
	emit.Close()

	return &WakeupChannel{
		recvFd: int(recvFile.Fd()),
		emitFd: int(emitFile.Fd()),
		files:  []*os.File{recvFile, emitFile},
	}, nil
}

// RecvFd exposes the receive-end descriptor for poll registration.
func (w *WakeupChannel) RecvFd() int { return w.recvFd }

// Wake writes one signal byte on the emit end. Safe from any goroutine.
func (w *WakeupChannel) Wake() error {
	for {
		_, err := unix.Write(w.emitFd, []byte{'m'})
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// consume reads one signal byte from the receive end, pairing one executed
// thunk with one wakeup byte.
func (w *WakeupChannel) consume() error {
	var b [1]byte
	for {
		_, err := unix.Read(w.recvFd, b[:])
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// Close releases both endpoints.
func (w *WakeupChannel) Close() error {
	if w.files != nil {
		var first error
		for _, f := range w.files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	err1 := unix.Close(w.recvFd)
	err2 := unix.Close(w.emitFd)
	if err1 != nil {
		return err1
	}
	return err2
}
