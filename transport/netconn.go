//go:build unix

// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"net"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NetConn exposes a net.Conn as a non-blocking api.Socket over a duplicate
// of its descriptor.
type NetConn struct {
	conn net.Conn
	*Socket
}

// NewNetConn duplicates the descriptor behind conn. conn must implement
// syscall.Conn (TCP and unix connections do).
func NewNetConn(conn net.Conn) (*NetConn, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, errors.Errorf("netconn: %T has no descriptor", conn)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return nil, errors.Wrap(err, "netconn: syscall conn")
	}
	var (
		dup  int
		derr error
	)
	if err := rc.Control(func(fd uintptr) {
		dup, derr = unix.Dup(int(fd))
	}); err != nil {
		return nil, errors.Wrap(err, "netconn: control")
	}
	if derr != nil {
		return nil, errors.Wrap(derr, "netconn: dup")
	}
	unix.CloseOnExec(dup)
	s, err := NewSocket(dup)
	if err != nil {
		unix.Close(dup)
		return nil, err
	}
	return &NetConn{conn: conn, Socket: s}, nil
}

// Conn returns the wrapped connection.
func (n *NetConn) Conn() net.Conn { return n.conn }

// Close closes the duplicate and the connection.
func (n *NetConn) Close() error {
	serr := n.Socket.Close()
	cerr := n.conn.Close()
	if serr != nil {
		return serr
	}
	return cerr
}
