// File: sink/file.go
// Author: momentics <momentics@gmail.com>

package sink

import (
	"os"
	"path/filepath"

	"github.com/momentics/hioload-dl/api"
)

// NewFileSinkFactory returns a factory writing each transfer to a file
// under dir, named by the opener's suggestion. Existing files are
// overwritten; dir is created on first use.
func NewFileSinkFactory(dir string) api.SinkFactory {
	return func(_ api.Handle, address, suggested string) (api.Sink, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		full := filepath.Join(dir, sanitizeName(suggested))
		f, err := os.Create(full)
		if err != nil {
			return nil, err
		}
		return &fileSink{f: f, path: full}, nil
	}
}

// sanitizeName reduces a suggestion to a bare file name, discarding any
// directory components a remote server may have smuggled in.
func sanitizeName(suggested string) string {
	name := filepath.Base(filepath.Clean(suggested))
	switch name {
	case ".", "..", string(filepath.Separator), "":
		return "download"
	}
	return name
}

type fileSink struct {
	f    *os.File
	path string
}

func (s *fileSink) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s *fileSink) Close() error                { return s.f.Close() }
func (s *fileSink) Name() string                { return s.path }
