// File: transport/file_test.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-dl/api"
)

func TestFileOpenerReadsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "payload.dat")
	require.NoError(t, os.WriteFile(p, []byte("local bytes"), 0o644))

	h, name, err := FileOpener{}.Open(p)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "payload.dat", name)

	w, ok := h.(api.Waitable)
	require.True(t, ok, "file handles must be waitable")
	fd, have := w.Descriptor()
	assert.True(t, have)
	assert.GreaterOrEqual(t, fd, 0)

	n, sized := h.(api.Sized).Length()
	assert.True(t, sized)
	assert.Equal(t, int64(len("local bytes")), n)

	got, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "local bytes", string(got))
}

func TestFileOpenerFileURL(t *testing.T) {
	p := filepath.Join(t.TempDir(), "via-url.bin")
	require.NoError(t, os.WriteFile(p, []byte("url bytes"), 0o644))

	h, name, err := FileOpener{}.Open("file://" + p)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "via-url.bin", name)
	got, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "url bytes", string(got))
}

func TestFileOpenerMissingFile(t *testing.T) {
	_, _, err := FileOpener{}.Open(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestSchemeOpenerRouting(t *testing.T) {
	p := filepath.Join(t.TempDir(), "routed.txt")
	require.NoError(t, os.WriteFile(p, []byte("routed"), 0o644))

	s := Default(nil)
	h, _, err := s.Open(p)
	require.NoError(t, err)
	h.Close()

	_, _, err = s.Open("gopher://unsupported/thing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scheme "gopher"`)
}
