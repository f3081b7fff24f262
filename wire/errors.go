package wire

import (
	"errors"
	"fmt"
	"io"
)

// Error is implemented by every error returned from Send and Receive.
type Error interface {
	error
	// Fatal reports whether the stream position can no longer be trusted.
	Fatal() bool
}

// Compile-time verification that all error types implement Error.
var (
	_ Error = (*IOError)(nil)
	_ Error = (*ProtocolError)(nil)
	_ Error = (*DecodeError)(nil)
)

// ErrContentTooLarge is wrapped by the ProtocolError returned when a frame
// declares more bytes than WithMaxContentLength allows.
var ErrContentTooLarge = errors.New("content length exceeds limit")

// ErrHeaderTooLong is wrapped by the ProtocolError returned when a header
// line exceeds MaxHeaderLine while WithMaxContentLength is in effect.
var ErrHeaderTooLong = errors.New("header line too long")

// ErrTrailingData is wrapped by the DecodeError returned when a body holds
// more than one JSON value.
var ErrTrailingData = errors.New("invalid data after top-level value")

// IOError indicates the sink or source failed, including an end of stream
// in the middle of a header block or body.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("lsp %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Fatal implements Error.
func (e *IOError) Fatal() bool { return true }

// ProtocolError indicates well-formed I/O carrying malformed framing.
type ProtocolError struct {
	Msg   string
	Value string
	Err   error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lsp protocol: %s %q: %v", e.Msg, e.Value, e.Err)
	}

	return fmt.Sprintf("lsp protocol: %s %q", e.Msg, e.Value)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Fatal implements Error.
func (e *ProtocolError) Fatal() bool { return true }

// DecodeError indicates a correctly delimited frame whose body is not a
// valid JSON value. Body holds the bytes that failed to parse.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lsp decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Fatal implements Error. The frame boundary is intact, so the stream can
// be read further.
func (e *DecodeError) Fatal() bool { return false }

// IsIO reports whether err wraps an *IOError.
func IsIO(err error) bool {
	_, ok := errors.AsType[*IOError](err)
	return ok
}

// IsProtocol reports whether err wraps a *ProtocolError.
func IsProtocol(err error) bool {
	_, ok := errors.AsType[*ProtocolError](err)
	return ok
}

// IsDecode reports whether err wraps a *DecodeError.
func IsDecode(err error) bool {
	_, ok := errors.AsType[*DecodeError](err)
	return ok
}

// Recoverable reports whether another Receive may be attempted after err.
func Recoverable(err error) bool {
	if err == nil {
		return true
	}

	e, ok := errors.AsType[Error](err)

	return ok && !e.Fatal()
}

// Closed reports whether err means the source ended cleanly at a frame
// boundary rather than in the middle of a frame.
func Closed(err error) bool {
	e, ok := errors.AsType[*IOError](err)
	return ok && e.Err == io.EOF
}
