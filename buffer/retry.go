// File: buffer/retry.go
// Author: momentics <momentics@gmail.com>
//
// Retry-with-classification state machine shared by the transport adapters.
// Each adapter supplies the operation, a classifier for non-progress results,
// a progress hook and, for the encrypted channel, a readiness wait.

package buffer

import (
	"io"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/momentics/stagebuf/api"
)

type state int

const (
	stateAttempt state = iota
	stateRetry
	stateWait
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateAttempt:
		return "attempt"
	case stateRetry:
		return "retry-immediately"
	case stateWait:
		return "wait-with-timeout"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// machine describes one adapter run.
type machine struct {
	name     string
	op       func() (int, error)
	classify func(n int, err error) state
	// progress books n transferred bytes and reports whether to keep going.
	progress func(n int) (bool, error)
	wait     func() (bool, error)
}

// attempt runs op, retrying immediately while the transport reports an
// interrupted call.
func attempt(op func() (int, error)) (int, error) {
	return retry.DoWithData(op,
		retry.Attempts(0),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, api.ErrInterrupted)
		}),
		retry.LastErrorOnly(true),
	)
}

// run drives m until done or failed and returns the bytes moved.
func (m *machine) run() (int, error) {
	var (
		total int
		cause error
		st    = stateAttempt
	)
	for {
		switch st {
		case stateAttempt, stateRetry:
			n, err := attempt(m.op)
			if err == nil && n > 0 {
				total += n
				more, perr := m.progress(n)
				if perr != nil {
					return total, perr
				}
				if !more {
					return total, nil
				}
				st = stateAttempt
				continue
			}
			st, cause = m.classify(n, err), err
		case stateWait:
			ready, err := m.wait()
			switch {
			case err != nil:
				log.Error().Err(err).Str("adapter", m.name).Msg("buffer: readiness wait failed")
				st, cause = stateFailed, err
			case ready:
				st = stateAttempt
			default:
				st = stateDone
			}
		case stateDone:
			return total, nil
		case stateFailed:
			return total, ioError(m.name, cause)
		}
	}
}

func ioError(op string, cause error) error {
	if cause == nil {
		cause = io.ErrUnexpectedEOF
	}
	return api.NewError(api.ErrCodeIO, op).WithCause(errors.WithStack(cause))
}

// classifyStream handles descriptor reads and all plain writes: a zero-byte
// result or end of input finishes, anything else is fatal.
func classifyStream(n int, err error) state {
	if err == nil || errors.Is(err, io.EOF) {
		return stateDone
	}
	return stateFailed
}

// classifySocketRead also treats would-block as the end of available data.
func classifySocketRead(n int, err error) state {
	if errors.Is(err, api.ErrWouldBlock) {
		return stateDone
	}
	return classifyStream(n, err)
}

// classifyChannelRead waits for readability on want-read and retries on the
// encrypted layer's no-error signal.
func classifyChannelRead(n int, err error) state {
	switch {
	case errors.Is(err, api.ErrRetry):
		return stateRetry
	case errors.Is(err, api.ErrWantRead):
		return stateWait
	}
	return classifyStream(n, err)
}

// classifyChannelWrite retries on no-error and want-write; a closed channel
// is fatal.
func classifyChannelWrite(n int, err error) state {
	switch {
	case errors.Is(err, api.ErrRetry), errors.Is(err, api.ErrWantWrite):
		return stateRetry
	case errors.Is(err, api.ErrChannelClosed):
		return stateFailed
	}
	return classifyStream(n, err)
}
