//go:build unix

// File: transport/fd_unix.go
// Author: momentics <momentics@gmail.com>
//
// Plain blocking descriptor over raw read(2)/write(2).

package transport

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FD is a plain descriptor. It implements api.Descriptor.
type FD struct {
	fd int
}

// NewFD wraps an already open descriptor. Ownership passes to the FD.
func NewFD(fd int) *FD {
	return &FD{fd: fd}
}

// OpenFile opens path with the given flags (O_CLOEXEC is always added).
func OpenFile(path string, flags int, perm uint32) (*FD, error) {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, perm)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &FD{fd: fd}, nil
}

// Read implements api.Descriptor.
func (f *FD) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Read(f.fd, p)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return n, nil
}

// Write implements api.Descriptor.
func (f *FD) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Write(f.fd, p)
	if err != nil {
		return 0, classifyErrno(err)
	}
	return n, nil
}

// Size returns the size reported by fstat(2).
func (f *FD) Size() (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(f.fd, &st); err != nil {
		return 0, errors.Wrap(err, "fstat")
	}
	return st.Size, nil
}

// Fd returns the raw descriptor.
func (f *FD) Fd() int { return f.fd }

// Close closes the descriptor.
func (f *FD) Close() error {
	if f.fd < 0 {
		return nil
	}
	err := unix.Close(f.fd)
	f.fd = -1
	return err
}
