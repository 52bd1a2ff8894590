// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, scripted behavior for the api transport contracts.

package fake

import (
	"sync"
	"time"

	"github.com/momentics/stagebuf/api"
)

// Step is one scripted transport result. A step with Err set fails the call
// that consumes it. On the read side Data is handed out, possibly across
// several calls if the caller's slice is short. On the write side Accept
// caps the bytes taken by that call; a negative Accept takes everything.
type Step struct {
	Data   []byte
	Err    error
	Accept int
}

// Wait is one scripted WaitReadable result.
type Wait struct {
	Ready bool
	Err   error
}

// Transport is a scripted api.Descriptor, api.Socket and api.Channel.
type Transport struct {
	mu       sync.Mutex
	reads    []Step
	writes   []Step
	waits    []Wait
	readEnd  error
	sent     []byte
	calls    map[string]int
	waitArgs []time.Duration
}

// NewTransport creates a transport whose reads end with readEnd once the
// script is exhausted. A nil readEnd reports end of input (0, nil).
func NewTransport(readEnd error) *Transport {
	return &Transport{
		readEnd: readEnd,
		calls:   make(map[string]int),
	}
}

// NewSocket is a transport whose exhausted reads would block.
func NewSocket() *Transport { return NewTransport(api.ErrWouldBlock) }

// NewChannel is a transport whose exhausted reads want to read.
func NewChannel() *Transport { return NewTransport(api.ErrWantRead) }

// AddRecvData scripts a successful read of data.
func (t *Transport) AddRecvData(data []byte) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	t.reads = append(t.reads, Step{Data: dataCopy})
	return t
}

// AddRecvError scripts a failing read.
func (t *Transport) AddRecvError(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads = append(t.reads, Step{Err: err})
	return t
}

// AddSendAccept scripts a write that takes at most n bytes.
func (t *Transport) AddSendAccept(n int) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = append(t.writes, Step{Accept: n})
	return t
}

// AddSendError scripts a failing write.
func (t *Transport) AddSendError(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = append(t.writes, Step{Err: err})
	return t
}

// AddWait scripts a WaitReadable result.
func (t *Transport) AddWait(ready bool, err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waits = append(t.waits, Wait{Ready: ready, Err: err})
	return t
}

func (t *Transport) read(p []byte, op string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[op]++
	if len(t.reads) == 0 {
		return 0, t.readEnd
	}
	st := &t.reads[0]
	if st.Err != nil {
		t.reads = t.reads[1:]
		return 0, st.Err
	}
	n := copy(p, st.Data)
	st.Data = st.Data[n:]
	if len(st.Data) == 0 {
		t.reads = t.reads[1:]
	}
	return n, nil
}

func (t *Transport) write(p []byte, op string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[op]++
	n := len(p)
	if len(t.writes) > 0 {
		st := t.writes[0]
		t.writes = t.writes[1:]
		if st.Err != nil {
			return 0, st.Err
		}
		if st.Accept >= 0 {
			n = min(n, st.Accept)
		}
	}
	t.sent = append(t.sent, p[:n]...)
	return n, nil
}

// Read implements api.Descriptor and api.Channel.
func (t *Transport) Read(p []byte) (int, error) { return t.read(p, "read") }

// Write implements api.Descriptor and api.Channel.
func (t *Transport) Write(p []byte) (int, error) { return t.write(p, "write") }

// Recv implements api.Socket.
func (t *Transport) Recv(p []byte) (int, error) { return t.read(p, "recv") }

// Send implements api.Socket.
func (t *Transport) Send(p []byte) (int, error) { return t.write(p, "send") }

// WaitReadable implements api.Channel. An exhausted script times out.
func (t *Transport) WaitReadable(timeout time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["wait"]++
	t.waitArgs = append(t.waitArgs, timeout)
	if len(t.waits) == 0 {
		return false, nil
	}
	w := t.waits[0]
	t.waits = t.waits[1:]
	return w.Ready, w.Err
}

// GetSentData returns all bytes accepted by Write and Send.
func (t *Transport) GetSentData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, len(t.sent))
	copy(out, t.sent)
	return out
}

// Calls returns how many times op ("read", "write", "recv", "send", "wait")
// was invoked.
func (t *Transport) Calls(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

// WaitTimeouts returns the timeouts passed to WaitReadable.
func (t *Transport) WaitTimeouts() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.waitArgs))
	copy(out, t.waitArgs)
	return out
}

// Compile-time contract checks.
var (
	_ api.Descriptor = (*Transport)(nil)
	_ api.Socket     = (*Transport)(nil)
	_ api.Channel    = (*Transport)(nil)
)
