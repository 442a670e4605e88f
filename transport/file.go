// File: transport/file.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/momentics/hioload-dl/api"
)

// FileOpener resolves local paths and file:// URLs into descriptor-backed
// handles.
type FileOpener struct{}

// Open opens the file for reading. The handle exposes the file descriptor;
// whether the reactor multiplexes on it is up to the poll backend (epoll
// refuses regular files, select accepts them), with the periodic path as
// the downloader's fallback either way.
func (FileOpener) Open(address string) (api.Handle, string, error) {
	p := address
	if u, err := url.Parse(address); err == nil && u.Scheme == "file" {
		p = u.Path
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", err
	}
	return &fileHandle{f: f}, filepath.Base(p), nil
}

type fileHandle struct {
	f *os.File
}

func (h *fileHandle) Read(p []byte) (int, error) { return h.f.Read(p) }
func (h *fileHandle) Close() error               { return h.f.Close() }

// Descriptor implements api.Waitable.
func (h *fileHandle) Descriptor() (int, bool) { return int(h.f.Fd()), true }

// Length implements api.Sized from file metadata.
func (h *fileHandle) Length() (int64, bool) {
	info, err := h.f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}
