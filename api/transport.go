// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport contracts consumed by the buffer engine adapters. Concrete
// implementations live in package transport; scripted doubles in package fake.

package api

import "time"

// Descriptor is a plain blocking descriptor (file, pipe, tty).
//
// Read and Write report an interrupted system call as ErrInterrupted.
// A zero-byte Read with a nil error means end of input.
type Descriptor interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
}

// Socket is a non-blocking stream socket.
//
// Recv returns (0, nil) on orderly shutdown by the peer, ErrWouldBlock when
// no data is available right now and ErrInterrupted on EINTR.
type Socket interface {
	Recv(p []byte) (n int, err error)
	Send(p []byte) (n int, err error)
}

// Channel is a non-blocking encrypted channel layered over a socket.
//
// Read and Write surface the encrypted layer's conditions as ErrWantRead,
// ErrWantWrite, ErrRetry and ErrChannelClosed. WaitReadable blocks until the
// underlying socket is readable or the timeout elapses; it reports false on
// timeout.
type Channel interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	WaitReadable(timeout time.Duration) (bool, error)
}
