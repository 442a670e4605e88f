//go:build unix

// File: facade/fetcher_test.go
// Author: momentics <momentics@gmail.com>

package facade

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-dl/api"
	"github.com/momentics/hioload-dl/control"
	"github.com/momentics/hioload-dl/downloader"
)

func writePayload(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func awaitResult(t *testing.T, ch <-chan api.Result) api.Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("no result before timeout")
		return api.Result{}
	}
}

func TestFetcherLifecycle(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	alpha := writePayload(t, src, "alpha.bin", "alpha payload")
	beta := writePayload(t, src, "beta.bin", "beta payload")

	f, err := New(Config{TargetDir: dst})
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Start())
	require.NoError(t, f.Start(), "second Start is a no-op")

	results := make(chan api.Result, 2)
	cb := func(res api.Result) { results <- res }

	// Scheduled from the test goroutine while the loop runs.
	_, err = f.Download(alpha, cb)
	require.NoError(t, err)
	_, err = f.Download(beta, cb)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res := awaitResult(t, results)
		require.Equal(t, api.OutcomeCompleted, res.Outcome, "result %+v", res)
	}
	require.NoError(t, f.Stop())

	got, err := os.ReadFile(filepath.Join(dst, "alpha.bin"))
	require.NoError(t, err)
	assert.Equal(t, "alpha payload", string(got))
	got, err = os.ReadFile(filepath.Join(dst, "beta.bin"))
	require.NoError(t, err)
	assert.Equal(t, "beta payload", string(got))

	snap := f.Metrics()
	assert.EqualValues(t, 2, snap[control.MetricCompleted])

	_, err = f.Download(alpha, nil)
	assert.True(t, errors.Is(err, api.ErrReactorStopped))
	assert.NoError(t, f.Stop(), "second Stop is a no-op")
}

func TestFetcherPreStartScheduleAndCancel(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	first := writePayload(t, src, "first.txt", "first")
	second := writePayload(t, src, "second.txt", "second")

	f, err := New(Config{
		TargetDir:  dst,
		Downloader: downloader.Config{MaxTotal: 1},
	})
	require.NoError(t, err)
	defer f.Close()

	results := make(chan api.Result, 2)
	cb := func(res api.Result) { results <- res }

	// Before Start the caller owns the scheduler: the second transfer queues
	// behind the global limit and can be cancelled while still pending.
	_, err = f.Download(first, cb)
	require.NoError(t, err)
	queued, err := f.Download(second, cb)
	require.NoError(t, err)

	ok, err := f.Cancel(queued)
	require.NoError(t, err)
	require.True(t, ok)
	res := awaitResult(t, results)
	assert.Equal(t, api.OutcomeCancelled, res.Outcome)
	assert.Equal(t, second, res.Address)

	require.NoError(t, f.Start())
	res = awaitResult(t, results)
	assert.Equal(t, api.OutcomeCompleted, res.Outcome)
	assert.Equal(t, first, res.Address)
	require.NoError(t, f.Stop())

	_, err = os.Stat(filepath.Join(dst, "first.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dst, "second.txt"))
	assert.True(t, os.IsNotExist(err))

	snap := f.Metrics()
	assert.EqualValues(t, 1, snap[control.MetricCompleted])
	assert.EqualValues(t, 1, snap[control.MetricCancelled])
}

func TestFetcherCloseWithoutStart(t *testing.T) {
	f, err := New(Config{TargetDir: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, f.Close())

	assert.True(t, errors.Is(f.Start(), api.ErrReactorStopped))
}

func TestFetcherCancelNil(t *testing.T) {
	f, err := New(Config{TargetDir: t.TempDir()})
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Cancel(nil)
	assert.Error(t, err)
}
