// File: buffer/cursor.go
// Author: momentics <momentics@gmail.com>
//
// Cursor arithmetic. These four primitives are the only code that moves
// head or tail or touches the used-length counter.

package buffer

import "fmt"

// retreatTail moves the tail back by n bytes.
func (b *Buffer) retreatTail(n int) {
	if n < 0 || b.tail-n < b.head {
		panic(fmt.Sprintf("buffer: retreatTail(%d) crosses head (head=%d tail=%d)", n, b.head, b.tail))
	}
	b.tail -= n
	b.used -= n
}

// rewindHead moves the head back by n bytes, stopping at the store origin.
func (b *Buffer) rewindHead(n int) {
	if n < 0 {
		panic(fmt.Sprintf("buffer: rewindHead(%d)", n))
	}
	n = min(n, b.head)
	b.head -= n
	b.used += n
}

// advanceTail moves the tail forward by n bytes.
func (b *Buffer) advanceTail(n int) {
	if n < 0 || b.tail+n > len(b.store) {
		panic(fmt.Sprintf("buffer: advanceTail(%d) passes end (tail=%d cap=%d)", n, b.tail, len(b.store)))
	}
	b.tail += n
	b.used += n
}

// consumeHead moves the head forward by n bytes.
func (b *Buffer) consumeHead(n int) {
	if n < 0 || b.head+n > b.tail {
		panic(fmt.Sprintf("buffer: consumeHead(%d) crosses tail (head=%d tail=%d)", n, b.head, b.tail))
	}
	b.head += n
	b.used -= n
}

// resetHead moves whatever is left of the used span to the store origin
// after a write drain. A full drain leaves the buffer empty.
func (b *Buffer) resetHead() {
	off := b.head
	if off == 0 {
		return
	}
	live := copy(b.store, b.store[b.head:b.tail])
	clear(b.store[live:b.tail])
	b.rewindHead(off)
	b.retreatTail(off)
}
