//go:build unix

// File: transport/tls_unix.go
// Author: momentics <momentics@gmail.com>
//
// TLS channel. Reads run under a short deadline so the channel behaves as
// non-blocking; readiness waits poll the underlying socket.

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/stagebuf/api"
)

// DefaultReadSlice is how long a single channel read may block.
const DefaultReadSlice = 5 * time.Millisecond

// TLSChannel adapts a *tls.Conn to api.Channel.
type TLSChannel struct {
	conn  *tls.Conn
	raw   syscall.RawConn
	slice time.Duration
	armed time.Time
}

// NewTLSChannel completes the handshake on conn and wraps it.
func NewTLSChannel(ctx context.Context, conn *tls.Conn) (*TLSChannel, error) {
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, errors.Wrap(err, "tls handshake")
	}
	c := &TLSChannel{conn: conn, slice: DefaultReadSlice}
	if sc, ok := conn.NetConn().(syscall.Conn); ok {
		if raw, err := sc.SyscallConn(); err == nil {
			c.raw = raw
		}
	}
	return c, nil
}

// SetReadSlice changes how long a single read may block.
func (c *TLSChannel) SetReadSlice(d time.Duration) {
	if d > 0 {
		c.slice = d
	}
}

// Read implements api.Channel.
func (c *TLSChannel) Read(p []byte) (int, error) {
	deadline, armed := time.Now().Add(c.slice), !c.armed.IsZero()
	if armed {
		deadline, c.armed = c.armed, time.Time{}
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, mapChannelErr(err)
	}
	n, err := c.conn.Read(p)
	if n > 0 {
		return n, nil
	}
	switch {
	case err == nil:
		return 0, api.ErrRetry
	case errors.Is(err, io.EOF):
		return 0, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		if armed {
			// an armed wait expired: nothing arrived in time
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", api.ErrWantRead, err)
	}
	return 0, mapChannelErr(err)
}

// Write implements api.Channel.
func (c *TLSChannel) Write(p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		return 0, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, fmt.Errorf("%w: %w", api.ErrWantWrite, err)
	}
	return 0, mapChannelErr(err)
}

// WaitReadable implements api.Channel. When the connection has no
// descriptor the wait is folded into the next Read's deadline.
func (c *TLSChannel) WaitReadable(timeout time.Duration) (bool, error) {
	if c.raw == nil {
		c.armed = time.Now().Add(timeout)
		return true, nil
	}
	var (
		ready bool
		perr  error
	)
	if err := c.raw.Control(func(fd uintptr) {
		ready, perr = pollReadable(int(fd), timeout)
	}); err != nil {
		return false, mapChannelErr(err)
	}
	return ready, perr
}

// Close sends close_notify and closes the connection.
func (c *TLSChannel) Close() error {
	return c.conn.Close()
}

// pollReadable waits until fd is readable or timeout has elapsed. Interrupted
// polls resume with whatever is left of the original timeout.
func pollReadable(fd int, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	deadline := time.Now().Add(timeout)
	for {
		n, err := unix.Poll(fds, pollTimeout(deadline, time.Now()))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, errors.Wrap(err, "poll")
		}
		return n > 0, nil
	}
}

// pollTimeout returns the whole milliseconds left until deadline, never
// negative.
func pollTimeout(deadline, now time.Time) int {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Millisecond)
}

func mapChannelErr(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %w", api.ErrChannelClosed, err)
	}
	return err
}
