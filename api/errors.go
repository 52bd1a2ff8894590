// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and transport signals for the stagebuf engine.

package api

import "fmt"

// Engine error kinds. Adapter and growth failures always match one of these
// through errors.Is.
var (
	ErrAllocation      = fmt.Errorf("backing store allocation failed")
	ErrIO              = fmt.Errorf("transport i/o failed")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Transport signals. They are classified by the engine and never surface to
// callers of the buffer adapters, except ErrChannelClosed which is fatal on
// the write path and is returned wrapped in ErrIO.
var (
	ErrInterrupted   = fmt.Errorf("interrupted call")
	ErrWouldBlock    = fmt.Errorf("operation would block")
	ErrWantRead      = fmt.Errorf("channel wants read")
	ErrWantWrite     = fmt.Errorf("channel wants write")
	ErrRetry         = fmt.Errorf("channel asks for retry")
	ErrChannelClosed = fmt.Errorf("channel closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeAllocation
	ErrCodeIO
	ErrCodeInvalidArgument
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeAllocation:
		return "allocation"
	case ErrCodeIO:
		return "io"
	case ErrCodeInvalidArgument:
		return "invalid-argument"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// kind maps a code to its sentinel.
func (c ErrorCode) kind() error {
	switch c {
	case ErrCodeAllocation:
		return ErrAllocation
	case ErrCodeIO:
		return ErrIO
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	}
	return nil
}

// Error represents a structured error with code, context and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if k := e.Code.kind(); k != nil {
		out = append(out, k)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the underlying failure.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}
