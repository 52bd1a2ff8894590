//go:build unix

// File: transport/errno_unix.go
// Author: momentics <momentics@gmail.com>

package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/stagebuf/api"
)

// classifyErrno tags an errno with the matching transport signal.
func classifyErrno(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EINTR):
		return fmt.Errorf("%w: %w", api.ErrInterrupted, err)
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
		return fmt.Errorf("%w: %w", api.ErrWouldBlock, err)
	}
	return err
}
