// File: buffer/mutate.go
// Author: momentics <momentics@gmail.com>
//
// Content mutators: append, truncation, range deletion, gap insertion and
// pattern substitution. Anything that needs room grows the store first and
// only then derives copy positions.

package buffer

import (
	"bytes"
	"fmt"

	"github.com/momentics/stagebuf/api"
)

// Append copies p after the tail, growing the store if needed.
func (b *Buffer) Append(p []byte) error {
	b.check()
	if len(p) == 0 {
		return nil
	}
	if err := b.ensureRoom(len(p)); err != nil {
		return err
	}
	b.advanceTail(copy(b.store[b.tail:], p))
	return nil
}

// AppendString is Append for a string.
func (b *Buffer) AppendString(s string) error {
	b.check()
	if len(s) == 0 {
		return nil
	}
	if err := b.ensureRoom(len(s)); err != nil {
		return err
	}
	b.advanceTail(copy(b.store[b.tail:], s))
	return nil
}

// AppendBounded appends the first n bytes of p. It does nothing when p holds
// fewer than n bytes.
func (b *Buffer) AppendBounded(p []byte, n int) error {
	if n < 0 || len(p) < n {
		return nil
	}
	return b.Append(p[:n])
}

// Write implements io.Writer on top of Append.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter on top of AppendString.
func (b *Buffer) WriteString(s string) (int, error) {
	if err := b.AppendString(s); err != nil {
		return 0, err
	}
	return len(s), nil
}

// Snip removes the last n bytes of the used span and zeroes them.
// n larger than Len panics.
func (b *Buffer) Snip(n int) {
	b.check()
	b.retreatTail(n)
	clear(b.store[b.tail : b.tail+n])
}

// Collapse deletes length bytes starting offset bytes after the head. Bytes
// after the deleted range slide left and the freed end of the store is
// zeroed. The tail then retreats by length, stopping at the head. Deleting
// the whole capacity clears the buffer; a range larger than the capacity or
// an offset outside the store is ignored.
func (b *Buffer) Collapse(offset, length int) {
	b.check()
	if offset < 0 || length < 0 {
		panic(fmt.Sprintf("buffer: Collapse(%d, %d)", offset, length))
	}
	capacity := len(b.store)
	at := b.head + offset
	if length > capacity || at >= capacity {
		return
	}
	if length == capacity {
		b.Clear()
		return
	}
	if length == 0 {
		return
	}

	from := min(at+length, capacity)
	moved := copy(b.store[at:], b.store[from:])
	clear(b.store[at+moved:])

	b.retreatTail(min(length, b.Len()))
}

// Shift opens a zero-filled gap of length bytes offset bytes after the head,
// moving the rest of the used span right. An offset outside the used span or
// a negative length fails with api.ErrInvalidArgument and leaves b untouched.
func (b *Buffer) Shift(offset, length int) error {
	b.check()
	if offset < 0 || length < 0 || offset > b.Len() {
		return api.NewError(api.ErrCodeInvalidArgument, "buffer: shift outside used span").
			WithContext("offset", offset).
			WithContext("length", length).
			WithContext("len", b.Len())
	}
	if length == 0 {
		return nil
	}
	// growth may relocate the store
	if err := b.ensureRoom(length); err != nil {
		return err
	}
	at := b.head + offset
	copy(b.store[at+length:], b.store[at:b.tail])
	clear(b.store[at : at+length])
	b.advanceTail(length)
	return nil
}

// Replace substitutes every occurrence of pattern in the used span with
// with, scanning left to right and resuming after each inserted
// replacement. It returns the number of substitutions made. An empty
// pattern matches nothing.
func (b *Buffer) Replace(pattern, with []byte) (int, error) {
	b.check()
	if len(pattern) == 0 {
		return 0, nil
	}
	lp, lr := len(pattern), len(with)
	count := 0
	pos := 0 // relative to head
	for pos < b.Len() {
		idx := bytes.Index(b.store[b.head+pos:b.tail], pattern)
		if idx < 0 {
			break
		}
		off := pos + idx
		switch {
		case lr < lp:
			copy(b.store[b.head+off:], with)
			b.Collapse(off+lr, lp-lr)
		case lr > lp:
			if err := b.Shift(off, lr-lp); err != nil {
				return count, err
			}
			copy(b.store[b.head+off:], with)
		default:
			copy(b.store[b.head+off:], with)
		}
		count++
		pos = off + lr
	}
	return count, nil
}

// ReplaceString is Replace for strings.
func (b *Buffer) ReplaceString(pattern, with string) (int, error) {
	return b.Replace([]byte(pattern), []byte(with))
}

// Push retreats the tail by n bytes, stopping at the head.
func (b *Buffer) Push(n int) {
	b.check()
	if n < 0 {
		panic(fmt.Sprintf("buffer: Push(%d)", n))
	}
	b.retreatTail(min(n, b.Len()))
}

// Pull advances the tail by n bytes, growing the store first if the tail
// would pass its end. Bytes exposed this way are whatever the store holds
// past the tail, zero unless a Push left them behind.
func (b *Buffer) Pull(n int) error {
	b.check()
	if n < 0 {
		panic(fmt.Sprintf("buffer: Pull(%d)", n))
	}
	if err := b.ensureRoom(n); err != nil {
		return err
	}
	b.advanceTail(n)
	return nil
}
