//go:build unix

// File: transport/socket_unix.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking stream socket. The non-blocking toggle belongs to the socket
// and happens once, when it is wrapped.

package transport

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Socket is a non-blocking stream socket. It implements api.Socket.
type Socket struct {
	fd       int
	nonblock bool
}

// NewSocket wraps fd and switches it to non-blocking mode.
// Ownership of fd passes to the Socket.
func NewSocket(fd int) (*Socket, error) {
	s := &Socket{fd: fd}
	if err := s.EnsureNonBlocking(); err != nil {
		return nil, err
	}
	return s, nil
}

// Pair returns two connected unix stream sockets.
func Pair() (*Socket, *Socket, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "socketpair")
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	a, err := NewSocket(fds[0])
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, nil, err
	}
	b, err := NewSocket(fds[1])
	if err != nil {
		a.Close()
		unix.Close(fds[1])
		return nil, nil, err
	}
	return a, b, nil
}

// EnsureNonBlocking sets O_NONBLOCK unless this socket already did. The
// original mode is not restored.
func (s *Socket) EnsureNonBlocking() error {
	if s.nonblock {
		return nil
	}
	flags, err := unix.FcntlInt(uintptr(s.fd), unix.F_GETFL, 0)
	if err != nil {
		return errors.Wrap(err, "fcntl F_GETFL")
	}
	if flags&unix.O_NONBLOCK == 0 {
		if err := unix.SetNonblock(s.fd, true); err != nil {
			return errors.Wrap(err, "set nonblock")
		}
	}
	s.nonblock = true
	return nil
}

// Recv implements api.Socket.
func (s *Socket) Recv(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, _, err := unix.Recvfrom(s.fd, p, 0)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return n, nil
}

// Send implements api.Socket.
func (s *Socket) Send(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.SendmsgN(s.fd, p, nil, nil, 0)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return n, nil
}

// Fd returns the raw descriptor.
func (s *Socket) Fd() int { return s.fd }

// CloseWrite shuts down the sending side.
func (s *Socket) CloseWrite() error {
	return unix.Shutdown(s.fd, unix.SHUT_WR)
}

// Close closes the socket.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
