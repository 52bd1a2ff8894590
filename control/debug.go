// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry for runtime inspection of buffers and pools.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/stagebuf/buffer"
	"github.com/momentics/stagebuf/pool"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, replacing any previous one.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Unregister removes a probe.
func (dp *DebugProbes) Unregister(name string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	delete(dp.probes, name)
}

// Names returns the registered probe names in order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// BufferState is the cursor snapshot reported by a buffer probe.
type BufferState struct {
	Valid   bool `json:"valid"`
	Cap     int  `json:"cap"`
	Head    int  `json:"head"`
	Tail    int  `json:"tail"`
	Len     int  `json:"len"`
	UsedLen int  `json:"used_len"`
}

// SnapshotBuffer captures the cursor state of b. Destroyed buffers report
// only Valid=false.
func SnapshotBuffer(b *buffer.Buffer) BufferState {
	if !b.Valid() {
		return BufferState{}
	}
	return BufferState{
		Valid:   true,
		Cap:     b.Cap(),
		Head:    b.Head(),
		Tail:    b.Tail(),
		Len:     b.Len(),
		UsedLen: b.UsedLen(),
	}
}

// ProbeBuffer registers "buffer.<name>" reporting the cursors of b.
// The buffer is read without locking; call DumpState from the goroutine
// that owns it.
func (dp *DebugProbes) ProbeBuffer(name string, b *buffer.Buffer) {
	dp.RegisterProbe("buffer."+name, func() any { return SnapshotBuffer(b) })
}

// ProbePool registers "pool.<name>" reporting the pool accounting.
func (dp *DebugProbes) ProbePool(name string, p *pool.BufferPool) {
	dp.RegisterProbe("pool."+name, func() any { return p.Stats() })
}
