// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// Recycling pool of engine buffers. Returned buffers are cleared and kept in
// a FIFO free list; Get hands out the oldest idle buffer that is large
// enough, allocating otherwise.

package pool

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/stagebuf/api"
	"github.com/momentics/stagebuf/buffer"
)

// DefaultMaxIdle bounds the free list.
const DefaultMaxIdle = 64

// BufferPool recycles *buffer.Buffer values. It is safe for concurrent use;
// the buffers it hands out are not.
type BufferPool struct {
	mu      sync.Mutex
	idle    *queue.Queue
	maxIdle int
	opts    []buffer.Option
	stats   api.BufferPoolStats
}

// NewBufferPool creates a pool that builds buffers with opts.
func NewBufferPool(maxIdle int, opts ...buffer.Option) *BufferPool {
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &BufferPool{
		idle:    queue.New(),
		maxIdle: maxIdle,
		opts:    opts,
	}
}

// Get returns an empty buffer with at least capacity bytes of store.
func (p *BufferPool) Get(capacity int) (*buffer.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// one pass over the free list, rotating misses to the back
	for i, n := 0, p.idle.Length(); i < n; i++ {
		b := p.idle.Remove().(*buffer.Buffer)
		if b.Cap() >= capacity {
			p.stats.Idle--
			p.stats.InUse++
			p.stats.Reused++
			return b, nil
		}
		p.idle.Add(b)
	}

	b, err := buffer.New(capacity, p.opts...)
	if err != nil {
		return nil, err
	}
	p.stats.TotalAlloc++
	p.stats.InUse++
	return b, nil
}

// Put clears b and returns it to the free list. Buffers that fail the
// integrity check, or that arrive when the free list is full, are destroyed.
func (p *BufferPool) Put(b *buffer.Buffer) {
	if b == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stats.InUse > 0 {
		p.stats.InUse--
	}
	if !b.Valid() || p.idle.Length() >= p.maxIdle {
		b.Destroy()
		p.stats.TotalFree++
		return
	}
	b.Clear()
	p.idle.Add(b)
	p.stats.Idle++
}

// Drain destroys every idle buffer.
func (p *BufferPool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.idle.Length() > 0 {
		p.idle.Remove().(*buffer.Buffer).Destroy()
		p.stats.TotalFree++
	}
	p.stats.Idle = 0
}

// Stats exposes resource/accounting metrics for observability.
func (p *BufferPool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
