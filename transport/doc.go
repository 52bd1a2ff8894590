// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concrete unix transports for the buffer engine adapters: plain
// descriptors, non-blocking sockets and TLS channels. OS conditions are
// mapped onto the api transport signals (api.ErrInterrupted,
// api.ErrWouldBlock, ...) while still unwrapping to the original errno.
package transport
