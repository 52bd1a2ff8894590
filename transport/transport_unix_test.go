//go:build unix

package transport_test

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/stagebuf/api"
	"github.com/momentics/stagebuf/buffer"
	"github.com/momentics/stagebuf/transport"
)

func pipe(t *testing.T) (*transport.FD, *transport.FD) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	r, w := transport.NewFD(fds[0]), transport.NewFD(fds[1])
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func TestDescriptorRoundTrip(t *testing.T) {
	r, w := pipe(t)

	out, err := buffer.New(8)
	require.NoError(t, err)
	require.NoError(t, out.AppendString("hello pipe"))
	n, err := out.WriteToDescriptor(w)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 0, out.Len())

	in, err := buffer.New(4)
	require.NoError(t, err)
	n, err = in.ReadFromDescriptor(r, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "hello pipe", in.String())
}

func TestDescriptorShortReadAtEOF(t *testing.T) {
	r, w := pipe(t)
	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	in, err := buffer.New(16)
	require.NoError(t, err)
	n, err := in.ReadFromDescriptor(r, 8)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", in.String())
}

func TestDescriptorReadClosedFails(t *testing.T) {
	r, _ := pipe(t)
	fd := r.Fd()
	require.NoError(t, r.Close())

	in, err := buffer.New(16)
	require.NoError(t, err)
	_, err = in.ReadFromDescriptor(transport.NewFD(fd), 4)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestOpenFileAndSize(t *testing.T) {
	path := t.TempDir() + "/data.txt"
	w, err := transport.OpenFile(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0o600)
	require.NoError(t, err)
	_, err = w.Write([]byte("twelve bytes"))
	require.NoError(t, err)
	size, err := w.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 12, size)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = transport.OpenFile(t.TempDir()+"/missing", unix.O_RDONLY, 0)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func socketPair(t *testing.T) (*transport.Socket, *transport.Socket) {
	t.Helper()
	a, b, err := transport.Pair()
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestSocketIsNonBlocking(t *testing.T) {
	a, _ := socketPair(t)
	flags, err := unix.FcntlInt(uintptr(a.Fd()), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)
	require.NoError(t, a.EnsureNonBlocking())
}

func TestSocketReadWouldBlockLeavesBuffer(t *testing.T) {
	a, _ := socketPair(t)
	b, err := buffer.New(16)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("kept"))

	n, err := b.ReadFromSocket(a, 8)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "kept", b.String())
}

func TestSocketRecvSignals(t *testing.T) {
	a, _ := socketPair(t)
	_, err := a.Recv(make([]byte, 4))
	assert.ErrorIs(t, err, api.ErrWouldBlock)
	assert.ErrorIs(t, err, unix.EAGAIN)
}

func TestSocketRoundTrip(t *testing.T) {
	a, peer := socketPair(t)
	payload := bytes.Repeat([]byte("stagebuf "), 300)

	out, err := buffer.New(64)
	require.NoError(t, err)
	require.NoError(t, out.Append(payload))
	n, err := out.WriteToSocket(peer)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	require.NoError(t, peer.CloseWrite())

	in, err := buffer.New(16)
	require.NoError(t, err)
	n, err = in.ReadFromSocket(a, 16)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, in.Bytes())
}

func TestNetConnExposesSocket(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	nc, err := transport.NewNetConn(client)
	require.NoError(t, err)
	defer nc.Close()

	server, ok := <-accepted
	require.True(t, ok)
	defer server.Close()

	out, err := buffer.New(16)
	require.NoError(t, err)
	require.NoError(t, out.AppendString("over tcp"))
	_, err = out.WriteToSocket(nc)
	require.NoError(t, err)

	got := make([]byte, 8)
	_, err = io.ReadFull(server, got)
	require.NoError(t, err)
	assert.Equal(t, "over tcp", string(got))
	assert.Same(t, client, nc.Conn())
}

func TestNetConnRejectsPipes(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	_, err := transport.NewNetConn(a)
	require.Error(t, err)
}

func TestSendOnClosedSocketFails(t *testing.T) {
	a, _ := socketPair(t)
	require.NoError(t, a.Close())
	_, err := a.Send([]byte("x"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, api.ErrWouldBlock))
	assert.ErrorIs(t, err, unix.EBADF)
}
