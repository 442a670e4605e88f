//go:build !unix

// File: reactor/wakeup_stub.go
// Author: momentics <momentics@gmail.com>

package reactor

import "github.com/momentics/hioload-dl/api"

// WakeupChannel is unavailable on platforms without a poll backend.
type WakeupChannel struct{}

func NewWakeupChannel() (*WakeupChannel, error) {
	return nil, api.ErrPollerUnavailable
}

func (w *WakeupChannel) RecvFd() int    { return -1 }
func (w *WakeupChannel) Wake() error    { return api.ErrPollerUnavailable }
func (w *WakeupChannel) consume() error { return api.ErrPollerUnavailable }
func (w *WakeupChannel) Close() error   { return nil }
