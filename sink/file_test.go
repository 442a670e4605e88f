// File: sink/file_test.go
// Author: momentics <momentics@gmail.com>

package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWritesUnderDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	factory := NewFileSinkFactory(dir)

	s, err := factory(nil, "http://host/data.bin", "data.bin")
	require.NoError(t, err)

	_, err = s.Write([]byte("part one "))
	require.NoError(t, err)
	_, err = s.Write([]byte("part two"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	want := filepath.Join(dir, "data.bin")
	assert.Equal(t, want, s.Name())
	got, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", string(got))
}

func TestFileSinkOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "same.txt")
	require.NoError(t, os.WriteFile(p, []byte("old old old old"), 0o644))

	factory := NewFileSinkFactory(dir)
	s, err := factory(nil, "http://host/same.txt", "same.txt")
	require.NoError(t, err)
	_, err = s.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"plain.txt":        "plain.txt",
		"a/b/c.txt":        "c.txt",
		"../../etc/passwd": "passwd",
		"..":               "download",
		".":                "download",
		"/":                "download",
		"":                 "download",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeName(in), "suggestion %q", in)
	}
}
