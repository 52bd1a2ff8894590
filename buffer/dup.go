// File: buffer/dup.go
// Author: momentics <momentics@gmail.com>

package buffer

// Duplicate returns an independent deep copy of b, including its options.
func (b *Buffer) Duplicate() (*Buffer, error) {
	b.check()
	nb := &Buffer{
		align:    b.align,
		maxCap:   b.maxCap,
		readWait: b.readWait,
	}
	if err := nb.Init(len(b.store)); err != nil {
		return nil, err
	}
	copy(nb.store, b.store)
	nb.head, nb.tail, nb.used = b.head, b.tail, b.used
	return nb, nil
}

// Copy overwrites dst with the full state of src, growing dst when its
// store is smaller. Bytes of dst beyond src's capacity are zeroed.
func Copy(dst, src *Buffer) error {
	dst.check()
	src.check()
	if dst == src {
		return nil
	}
	if n := len(src.store) - len(dst.store); n > 0 {
		if err := dst.Extend(n); err != nil {
			return err
		}
	}
	n := copy(dst.store, src.store)
	clear(dst.store[n:])
	dst.head, dst.tail, dst.used = src.head, src.tail, src.used
	return nil
}
