// File: buffer/store.go
// Author: momentics <momentics@gmail.com>
//
// Backing store manager: allocation, growth, clearing, teardown and the
// integrity tag.

package buffer

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/momentics/stagebuf/api"
)

const (
	// DefaultCapacity is the initial capacity used by consumers that have no
	// better estimate.
	DefaultCapacity = 16384

	// DefaultAlignment is the growth granularity.
	DefaultAlignment = 1024

	// DefaultMaxCapacity bounds a single backing store.
	DefaultMaxCapacity = 1 << 30

	// DefaultReadWait bounds one readiness wait of the encrypted-channel reader.
	DefaultReadWait = time.Second

	integrityTag uint32 = 0x12344321
)

// Buffer is a growable byte buffer with independent head and tail cursors.
type Buffer struct {
	store []byte
	head  int
	tail  int
	used  int
	tag   uint32

	align    int
	maxCap   int
	readWait time.Duration
}

// Option customizes buffer construction.
type Option func(*Buffer)

// WithAlignment sets the growth granularity. Values below 1 are ignored.
func WithAlignment(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.align = n
		}
	}
}

// WithMaxCapacity caps the size the backing store may grow to.
func WithMaxCapacity(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.maxCap = n
		}
	}
}

// WithReadWait sets how long the encrypted-channel reader waits for the
// socket to become readable before ending the read.
func WithReadWait(d time.Duration) Option {
	return func(b *Buffer) {
		if d > 0 {
			b.readWait = d
		}
	}
}

// New allocates a buffer with a zero-filled backing store of capacity bytes.
func New(capacity int, opts ...Option) (*Buffer, error) {
	b := &Buffer{}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.Init(capacity); err != nil {
		return nil, err
	}
	return b, nil
}

// Init (re)initializes b with a fresh backing store of capacity bytes.
// Options applied earlier are kept. A buffer whose Init failed must not be used.
func (b *Buffer) Init(capacity int) error {
	b.defaults()
	if capacity < 0 || capacity > b.maxCap {
		return api.NewError(api.ErrCodeAllocation, "buffer: init").
			WithContext("capacity", capacity).
			WithContext("max", b.maxCap)
	}
	b.store = make([]byte, capacity)
	b.head, b.tail, b.used = 0, 0, 0
	b.tag = integrityTag
	return nil
}

func (b *Buffer) defaults() {
	if b.align <= 0 {
		b.align = DefaultAlignment
	}
	if b.maxCap <= 0 {
		b.maxCap = DefaultMaxCapacity
	}
	if b.readWait <= 0 {
		b.readWait = DefaultReadWait
	}
}

// Valid reports whether b carries the integrity tag written by Init.
func (b *Buffer) Valid() bool {
	return b != nil && b.tag == integrityTag
}

func (b *Buffer) check() {
	if !b.Valid() {
		panic("buffer: use of uninitialized or destroyed buffer")
	}
}

// alignUp rounds n up to the growth granularity.
func (b *Buffer) alignUp(n int) int {
	a := b.align
	if n > math.MaxInt-a {
		return math.MaxInt
	}
	return (n + a - 1) / a * a
}

// Extend grows the backing store by at least by bytes, rounded up to the
// alignment. Cursors are offsets and survive the relocation unchanged.
func (b *Buffer) Extend(by int) error {
	b.check()
	if by <= 0 {
		return nil
	}
	grow := b.alignUp(by)
	capacity := len(b.store)
	if grow > b.maxCap-capacity {
		log.Error().
			Int("capacity", capacity).
			Int("by", by).
			Int("max", b.maxCap).
			Msg("buffer: extend failed")
		return api.NewError(api.ErrCodeAllocation, "buffer: extend").
			WithContext("capacity", capacity).
			WithContext("by", by)
	}
	next := make([]byte, capacity+grow)
	copy(next, b.store)
	b.store = next
	log.Debug().Int("from", capacity).Int("to", len(next)).Msg("buffer: extended")
	return nil
}

// ensureRoom grows the store so that at least n bytes fit after the tail.
func (b *Buffer) ensureRoom(n int) error {
	if room := b.Room(); n > room {
		return b.Extend(n - room)
	}
	return nil
}

// Clear zeroes the backing store and empties the buffer. Capacity is kept.
func (b *Buffer) Clear() {
	b.check()
	clear(b.store)
	b.head, b.tail, b.used = 0, 0, 0
}

// Destroy zeroes and releases the backing store. The buffer is unusable
// until Init is called again.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}
	clear(b.store)
	*b = Buffer{}
}

// Cap returns the size of the backing store.
func (b *Buffer) Cap() int { return len(b.store) }

// Len returns the size of the used span, tail - head.
func (b *Buffer) Len() int { return b.tail - b.head }

// UsedLen returns the maintained used-length counter.
func (b *Buffer) UsedLen() int { return b.used }

// Slack returns capacity minus the used span.
func (b *Buffer) Slack() int { return len(b.store) - b.Len() }

// Room returns the bytes available after the tail without growing.
func (b *Buffer) Room() int { return len(b.store) - b.tail }

// Head returns the offset of the first live byte.
func (b *Buffer) Head() int { return b.head }

// Tail returns the offset one past the last live byte.
func (b *Buffer) Tail() int { return b.tail }

// Bytes returns the live content. The slice aliases the backing store and
// is valid only until the next mutating call.
func (b *Buffer) Bytes() []byte { return b.store[b.head:b.tail:b.tail] }

// String returns a copy of the live content as a string.
func (b *Buffer) String() string {
	if b == nil {
		return "<nil>"
	}
	return string(b.store[b.head:b.tail])
}
