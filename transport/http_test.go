// File: transport/http_test.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-dl/api"
)

func TestHTTPOpenerReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello body"))
	}))
	defer srv.Close()

	o := &HTTPOpener{Client: srv.Client()}
	h, name, err := o.Open(srv.URL + "/files/data.bin")
	require.NoError(t, err)
	defer h.Close()

	got, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "hello body", string(got))
	assert.Equal(t, "data.bin", name)

	// Response bodies expose no descriptor; these transfers take the
	// periodic drive path.
	_, waitable := h.(api.Waitable)
	assert.False(t, waitable)

	// The Content-Length header becomes the known transfer size.
	n, ok := h.(api.Sized).Length()
	assert.True(t, ok)
	assert.Equal(t, int64(len("hello body")), n)
}

func TestHTTPOpenerContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	o := &HTTPOpener{Client: srv.Client()}
	h, name, err := o.Open(srv.URL + "/anything")
	require.NoError(t, err)
	h.Close()

	assert.Equal(t, "report.pdf", name)
}

func TestHTTPOpenerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	o := &HTTPOpener{Client: srv.Client()}
	h, _, err := o.Open(srv.URL + "/missing")
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Contains(t, err.Error(), "404")
}

func TestBasenameOf(t *testing.T) {
	cases := map[string]string{
		"http://host/a/b.txt": "b.txt",
		"http://host/a/dir/":  "dir",
		"http://host/":        "download",
		"http://host":         "download",
	}
	for address, want := range cases {
		assert.Equal(t, want, basenameOf(address), "address %q", address)
	}
}
