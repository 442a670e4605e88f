// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool recycles fixed-size byte buffers. The downloader reads one chunk
// per readiness event, so without recycling every dispatch would allocate a
// fresh chunk buffer.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool returns a pool handing out buffers of exactly size bytes.
func NewBytePool(size int) *BytePool {
	bp := &BytePool{size: size}
	bp.p.New = func() any { return make([]byte, size) }
	return bp
}

// Get returns a buffer from the pool.
func (b *BytePool) Get() []byte {
	return b.p.Get().([]byte)
}

// Put returns a buffer to the pool. Buffers of the wrong size are dropped
// for the GC to handle.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	b.p.Put(buf[:b.size])
}

// Size reports the buffer size this pool hands out.
func (b *BytePool) Size() int { return b.size }
