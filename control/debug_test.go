//go:build unix

package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/stagebuf/api"
	"github.com/momentics/stagebuf/buffer"
	"github.com/momentics/stagebuf/control"
	"github.com/momentics/stagebuf/pool"
)

func TestDebugProbesBuffer(t *testing.T) {
	dp := control.NewDebugProbes()
	b, err := buffer.New(32)
	require.NoError(t, err)
	require.NoError(t, b.AppendString("hello world"))
	b.Snip(6)

	dp.ProbeBuffer("in", b)
	state := dp.DumpState()["buffer.in"].(control.BufferState)
	assert.Equal(t, control.BufferState{Valid: true, Cap: 32, Tail: 5, Len: 5, UsedLen: 5}, state)

	b.Destroy()
	assert.Equal(t, control.BufferState{}, dp.DumpState()["buffer.in"])
}

func TestDebugProbesPool(t *testing.T) {
	dp := control.NewDebugProbes()
	p := pool.NewBufferPool(2)
	b, err := p.Get(16)
	require.NoError(t, err)
	dp.ProbePool("staging", p)

	assert.Equal(t, api.BufferPoolStats{TotalAlloc: 1, InUse: 1}, dp.DumpState()["pool.staging"])
	p.Put(b)
	assert.Equal(t, api.BufferPoolStats{TotalAlloc: 1, Idle: 1}, dp.DumpState()["pool.staging"])
}

func TestDebugProbesRegistry(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("custom", func() any { return 7 })
	assert.Equal(t, []string{"custom", "platform.cpus", "platform.pagesize"}, dp.Names())

	state := dp.DumpState()
	assert.Greater(t, state["platform.cpus"], 0)
	assert.Greater(t, state["platform.pagesize"], 0)

	dp.Unregister("custom")
	assert.NotContains(t, dp.DumpState(), "custom")
}
