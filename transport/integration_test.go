//go:build unix

// File: transport/integration_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end paths: HTTP body through the periodic drive path, and a local
// file through the descriptor path, both landing in a file sink.

package transport_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-dl/api"
	"github.com/momentics/hioload-dl/downloader"
	"github.com/momentics/hioload-dl/reactor"
	"github.com/momentics/hioload-dl/sink"
	"github.com/momentics/hioload-dl/transport"
)

func runToCompletion(t *testing.T, r *reactor.Reactor) {
	t.Helper()
	runDone := make(chan error, 1)
	go func() { runDone <- r.Run() }()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("download did not finish")
	}
}

func TestDownloadOverHTTPToFile(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="payload.bin"`)
		w.Write(payload)
	}))
	defer srv.Close()

	r, err := reactor.New(reactor.DefaultConfig())
	require.NoError(t, err)
	defer r.Close()

	d, err := downloader.New(r, downloader.Config{Opener: transport.Default(srv.Client())})
	require.NoError(t, err)

	dir := t.TempDir()
	var result api.Result
	d.Download(srv.URL+"/big", sink.NewFileSinkFactory(dir), func(res api.Result) {
		result = res
		r.Stop()
	})

	runToCompletion(t, r)

	require.Equal(t, api.OutcomeCompleted, result.Outcome)
	require.NoError(t, result.Err)
	assert.Equal(t, filepath.Join(dir, "payload.bin"), result.Path)
	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadLocalFileToFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src.dat")
	payload := bytes.Repeat([]byte("x"), 3*downloader.DefaultChunkSize+17)
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	r, err := reactor.New(reactor.DefaultConfig())
	require.NoError(t, err)
	defer r.Close()

	d, err := downloader.New(r, downloader.Config{Opener: transport.Default(nil)})
	require.NoError(t, err)

	dir := t.TempDir()
	var result api.Result
	d.Download(src, sink.NewFileSinkFactory(dir), func(res api.Result) {
		result = res
		r.Stop()
	})

	runToCompletion(t, r)

	require.Equal(t, api.OutcomeCompleted, result.Outcome)
	assert.Equal(t, filepath.Join(dir, "src.dat"), result.Path)
	got, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
