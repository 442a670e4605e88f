// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector. Exposes counters in a thread-safe map with
// dynamic registration; read side gets a point-in-time copy.

package control

import (
	"sync"
	"time"
)

// Counter names written by the downloader.
const (
	MetricStarted   = "transfers_started"
	MetricQueued    = "transfers_queued"
	MetricPromoted  = "transfers_promoted"
	MetricCompleted = "transfers_completed"
	MetricFailed    = "transfers_failed"
	MetricCancelled = "transfers_cancelled"
	MetricBytes     = "bytes_transferred"
)

// MetricsRegistry holds named int64 counters.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]int64
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]int64),
	}
}

// Add increments a counter by delta, registering it on first use.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.metrics[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Set overwrites a counter value.
func (mr *MetricsRegistry) Set(key string, value int64) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns one counter, zero when never written.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.metrics[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated reports when any counter last changed.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
