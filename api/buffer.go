// Package api
// Author: momentics <momentics@gmail.com>
//
// Accounting types shared between the buffer pool and the control layer.

package api

// BufferPoolStats aggregates buffer allocation/reuse stats.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	Idle       int64
	Reused     int64
}
