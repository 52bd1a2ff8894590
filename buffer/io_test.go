package buffer_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/stagebuf/api"
	"github.com/momentics/stagebuf/buffer"
	"github.com/momentics/stagebuf/fake"
)

var errBoom = errors.New("boom")

func TestReadFromDescriptorRetriesInterrupted(t *testing.T) {
	d := fake.NewTransport(nil).
		AddRecvError(api.ErrInterrupted).
		AddRecvData([]byte("abc")).
		AddRecvError(api.ErrInterrupted).
		AddRecvData([]byte("defgh"))

	b := newBuf(t, 4, "")
	n, err := b.ReadFromDescriptor(d, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abcdef", b.String())
	assert.Equal(t, 6, b.UsedLen())
	assert.Equal(t, 4, d.Calls("read"))
}

func TestReadFromDescriptorShortOnEOF(t *testing.T) {
	d := fake.NewTransport(nil).AddRecvData([]byte("abc"))
	b := newBuf(t, 16, "x")
	n, err := b.ReadFromDescriptor(d, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "xabc", b.String())
}

func TestReadFromDescriptorZeroRequest(t *testing.T) {
	d := fake.NewTransport(nil).AddRecvData([]byte("abc"))
	b := newBuf(t, 16, "")
	n, err := b.ReadFromDescriptor(d, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, d.Calls("read"))
}

func TestReadFromDescriptorFailure(t *testing.T) {
	d := fake.NewTransport(nil).AddRecvData([]byte("ab")).AddRecvError(errBoom)
	b := newBuf(t, 16, "")
	n, err := b.ReadFromDescriptor(d, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ab", b.String())
}

func TestReadFromSocketWouldBlockImmediately(t *testing.T) {
	s := fake.NewSocket()
	b := newBuf(t, 16, "keep")
	n, err := b.ReadFromSocket(s, 8)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "keep", b.String())
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 1, s.Calls("recv"))
}

func TestReadFromSocketDoublesWhenFull(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 3)
	s := fake.NewSocket().
		AddRecvData(payload[:16]).
		AddRecvError(api.ErrInterrupted).
		AddRecvData(payload[16:])

	b := newBuf(t, 16, "")
	n, err := b.ReadFromSocket(s, 8)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, b.Bytes())
	assert.Equal(t, 16+buffer.DefaultAlignment, b.Cap())
}

func TestReadFromSocketStopsOnOrderlyClose(t *testing.T) {
	s := fake.NewTransport(nil).AddRecvData([]byte("bye"))
	b := newBuf(t, 16, "")
	n, err := b.ReadFromSocket(s, 16)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "bye", b.String())
}

func TestReadFromSocketFailure(t *testing.T) {
	s := fake.NewSocket().AddRecvData([]byte("ab")).AddRecvError(errBoom)
	b := newBuf(t, 16, "")
	n, err := b.ReadFromSocket(s, 16)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, n)
}

func TestReadFromSocketFullBufferStillReads(t *testing.T) {
	s := fake.NewSocket().AddRecvData([]byte("more"))
	b := newBuf(t, 4, "full")
	n, err := b.ReadFromSocket(s, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "fullmore", b.String())
}

func TestReadFromChannelWaitsForReadiness(t *testing.T) {
	c := fake.NewChannel().
		AddRecvData([]byte("abc")).
		AddRecvError(api.ErrWantRead).
		AddRecvError(api.ErrRetry).
		AddRecvData([]byte("def")).
		AddWait(true, nil)

	b, err := buffer.New(16, buffer.WithReadWait(250*time.Millisecond))
	require.NoError(t, err)
	n, err := b.ReadFromChannel(c, 8)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abcdef", b.String())

	// second wait finds nothing and ends the read
	assert.Equal(t, 2, c.Calls("wait"))
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, c.WaitTimeouts())
}

func TestReadFromChannelDefaultWait(t *testing.T) {
	c := fake.NewChannel()
	b := newBuf(t, 16, "")
	n, err := b.ReadFromChannel(c, 8)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []time.Duration{buffer.DefaultReadWait}, c.WaitTimeouts())
}

func TestReadFromChannelWaitFailure(t *testing.T) {
	c := fake.NewChannel().AddRecvData([]byte("ab")).AddWait(false, errBoom)
	b := newBuf(t, 16, "")
	n, err := b.ReadFromChannel(c, 8)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ab", b.String())
}

func TestReadFromChannelTransportFailure(t *testing.T) {
	c := fake.NewChannel().AddRecvError(api.ErrChannelClosed)
	b := newBuf(t, 16, "")
	_, err := b.ReadFromChannel(c, 8)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, api.ErrChannelClosed)
}

func TestWriteToDescriptorFullDrain(t *testing.T) {
	d := fake.NewTransport(nil)
	b := newBuf(t, 16, "hello world")
	n, err := b.WriteToDescriptor(d)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "hello world", string(d.GetSentData()))
	assert.Equal(t, 1, d.Calls("write"))

	// a full drain leaves an empty buffer with consistent accounting
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Head())
	assert.Equal(t, 0, b.Tail())
	assert.Equal(t, 0, b.UsedLen())

	require.NoError(t, b.AppendString("next"))
	assert.Equal(t, "next", b.String())
}

func TestWriteToDescriptorPartialWrites(t *testing.T) {
	d := fake.NewTransport(nil).AddSendAccept(3).AddSendAccept(4)
	b := newBuf(t, 16, "hello world")
	n, err := b.WriteToDescriptor(d)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "hello world", string(d.GetSentData()))
	assert.Equal(t, 3, d.Calls("write"))
	assert.Equal(t, 0, b.Len())
}

func TestWriteToDescriptorZeroWriteKeepsRemainder(t *testing.T) {
	d := fake.NewTransport(nil).AddSendAccept(4).AddSendAccept(0)
	b := newBuf(t, 16, "hello world")
	n, err := b.WriteToDescriptor(d)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "o world", b.String())
	assert.Equal(t, 0, b.Head())
	assert.Equal(t, 7, b.UsedLen())
}

func TestWriteToDescriptorFailureLeavesHead(t *testing.T) {
	d := fake.NewTransport(nil).AddSendAccept(4).AddSendError(errBoom)
	b := newBuf(t, 16, "hello world")
	n, err := b.WriteToDescriptor(d)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, b.Head())
	assert.Equal(t, "o world", b.String())
}

func TestWriteEmptyBufferMakesNoCall(t *testing.T) {
	d := fake.NewTransport(nil)
	b := newBuf(t, 16, "")
	n, err := b.WriteToDescriptor(d)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, d.Calls("write"))
}

func TestWriteToSocket(t *testing.T) {
	s := fake.NewSocket().AddSendError(api.ErrInterrupted).AddSendAccept(5)
	b := newBuf(t, 16, "hello world")
	n, err := b.WriteToSocket(s)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "hello world", string(s.GetSentData()))
	assert.Equal(t, 3, s.Calls("send"))
	assert.Equal(t, 0, b.Len())
}

func TestWriteToSocketWouldBlockIsFatal(t *testing.T) {
	s := fake.NewSocket().AddSendError(api.ErrWouldBlock)
	b := newBuf(t, 16, "hello")
	_, err := b.WriteToSocket(s)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, api.ErrWouldBlock)
	assert.Equal(t, "hello", b.String())
}

func TestWriteToChannelRetriesTransientSignals(t *testing.T) {
	c := fake.NewChannel().
		AddSendError(api.ErrWantWrite).
		AddSendError(api.ErrRetry).
		AddSendError(api.ErrInterrupted).
		AddSendAccept(-1)
	b := newBuf(t, 16, "secret")
	n, err := b.WriteToChannel(c)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "secret", string(c.GetSentData()))
	assert.Equal(t, 4, c.Calls("write"))
	assert.Equal(t, 0, b.Len())
}

func TestWriteToChannelClosedIsFatal(t *testing.T) {
	c := fake.NewChannel().AddSendAccept(2).AddSendError(api.ErrChannelClosed)
	b := newBuf(t, 16, "secret")
	n, err := b.WriteToChannel(c)
	assert.ErrorIs(t, err, api.ErrIO)
	assert.ErrorIs(t, err, api.ErrChannelClosed)
	assert.Equal(t, 2, n)
}
