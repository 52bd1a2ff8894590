// File: buffer/io.go
// Author: momentics <momentics@gmail.com>
//
// Transport adapters. Readers fill the store after the tail, writers drain
// the used span from the head. All of them share the append growth path and
// the retry state machine in retry.go.

package buffer

import (
	"github.com/momentics/stagebuf/api"
)

// ReadFromDescriptor reads exactly n bytes from d unless end of input or an
// error comes first. It returns the bytes read; on failure the error
// matches api.ErrIO and the bytes read so far stay in the buffer.
func (b *Buffer) ReadFromDescriptor(d api.Descriptor, n int) (int, error) {
	b.check()
	if n <= 0 {
		return 0, nil
	}
	if err := b.ensureRoom(n); err != nil {
		return 0, err
	}
	left := n
	m := &machine{
		name: "read descriptor",
		op: func() (int, error) {
			return d.Read(b.store[b.tail : b.tail+left])
		},
		classify: classifyStream,
		progress: func(got int) (bool, error) {
			b.advanceTail(got)
			left -= got
			return left > 0, nil
		},
	}
	return m.run()
}

// ReadFromSocket receives from a non-blocking socket until the peer closes
// or no more data is available right now. The store doubles whenever the
// current room fills up, so the result may exceed n.
func (b *Buffer) ReadFromSocket(s api.Socket, n int) (int, error) {
	b.check()
	slack, err := b.prepareRead(n)
	if err != nil {
		return 0, err
	}
	m := &machine{
		name: "read socket",
		op: func() (int, error) {
			return s.Recv(b.store[b.tail : b.tail+slack])
		},
		classify: classifySocketRead,
		progress: b.refill(&slack),
	}
	return m.run()
}

// ReadFromChannel is ReadFromSocket for an encrypted channel. When the
// channel wants to read it waits up to the configured read wait for the
// socket to become readable; if nothing arrives the read ends with what it
// has.
func (b *Buffer) ReadFromChannel(c api.Channel, n int) (int, error) {
	b.check()
	slack, err := b.prepareRead(n)
	if err != nil {
		return 0, err
	}
	m := &machine{
		name: "read channel",
		op: func() (int, error) {
			return c.Read(b.store[b.tail : b.tail+slack])
		},
		classify: classifyChannelRead,
		progress: b.refill(&slack),
		wait: func() (bool, error) {
			return c.WaitReadable(b.readWait)
		},
	}
	return m.run()
}

// prepareRead makes room for n bytes and returns the room after the tail.
func (b *Buffer) prepareRead(n int) (int, error) {
	if err := b.ensureRoom(n); err != nil {
		return 0, err
	}
	if b.Room() == 0 {
		if err := b.Extend(max(len(b.store), 1)); err != nil {
			return 0, err
		}
	}
	return b.Room(), nil
}

// refill books received bytes and doubles the store once the room is used up.
func (b *Buffer) refill(slack *int) func(int) (bool, error) {
	return func(got int) (bool, error) {
		b.advanceTail(got)
		*slack -= got
		if *slack == 0 {
			if err := b.Extend(len(b.store)); err != nil {
				return false, err
			}
			*slack = b.Room()
		}
		return true, nil
	}
}

// WriteToDescriptor drains the used span into d. On success the undrained
// remainder, if any, is moved to the store origin.
func (b *Buffer) WriteToDescriptor(d api.Descriptor) (int, error) {
	b.check()
	return b.drain("write descriptor", d.Write, classifyStream)
}

// WriteToSocket drains the used span into a non-blocking socket.
// Would-block is fatal here.
func (b *Buffer) WriteToSocket(s api.Socket) (int, error) {
	b.check()
	return b.drain("write socket", s.Send, classifyStream)
}

// WriteToChannel drains the used span into an encrypted channel.
func (b *Buffer) WriteToChannel(c api.Channel) (int, error) {
	b.check()
	return b.drain("write channel", c.Write, classifyChannelWrite)
}

func (b *Buffer) drain(name string, write func([]byte) (int, error), classify func(int, error) state) (int, error) {
	if b.Len() == 0 {
		b.resetHead()
		return 0, nil
	}
	m := &machine{
		name: name,
		op: func() (int, error) {
			return write(b.store[b.head:b.tail])
		},
		classify: classify,
		progress: func(put int) (bool, error) {
			b.consumeHead(min(put, b.Len()))
			return b.Len() > 0, nil
		},
	}
	total, err := m.run()
	if err != nil {
		return total, err
	}
	b.resetHead()
	return total, nil
}
