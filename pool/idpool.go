// File: pool/idpool.go
// Author: momentics <momentics@gmail.com>
//
// IDPool hands out small unique integers in a thread-safe way. Ids obtained
// through Get are guaranteed not to be returned again until they are given
// back through Release. Released ids are reused before the pool grows, and
// Get always returns the lowest id currently available.

package pool

import (
	"container/heap"
	"sync"
)

// IDPool allocates unique non-negative integers.
//
// It is the one component of the library that is called from both the
// dispatcher goroutine (periodic callback registration) and foreign
// goroutines, so it carries its own lock.
type IDPool struct {
	mu      sync.Mutex
	maxID   int     // largest id ever issued, -1 when none outstanding
	freeIDs intHeap // released ids, min-heap so Get reuses the lowest first
}

// NewIDPool returns an empty pool. The first Get yields 0.
func NewIDPool() *IDPool {
	return &IDPool{maxID: -1}
}

// Get returns the smallest id not currently outstanding.
func (p *IDPool) Get() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.freeIDs) > 0 {
		return heap.Pop(&p.freeIDs).(int)
	}
	p.maxID++
	return p.maxID
}

// Release returns id to the pool so Get may hand it out again. When the last
// outstanding id is released the pool resets itself, reclaiming the free set.
func (p *IDPool) Release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	heap.Push(&p.freeIDs, id)
	if len(p.freeIDs) == p.maxID+1 {
		p.reset()
	}
}

// Reset clears the pool state. It must only be called when no id is
// outstanding.
func (p *IDPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *IDPool) reset() {
	p.maxID = -1
	p.freeIDs = nil
}

// intHeap is a minimal min-heap of ints for container/heap.
type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
