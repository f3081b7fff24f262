package wiretest

import (
	"errors"
	"testing"

	"github.com/gossip-lsp/lspwire/wire"
)

// AssertIOError asserts that err is a wire.IOError wrapping target. A nil
// target only checks the error kind.
func AssertIOError(t testing.TB, err, target error) {
	t.Helper()
	ioErr, ok := errors.AsType[*wire.IOError](err)
	if !ok {
		t.Fatalf("expected *wire.IOError, got %T: %v", err, err)
	}
	if target != nil && !errors.Is(ioErr, target) {
		t.Errorf("IOError %v does not wrap %v", ioErr, target)
	}
}

// AssertProtocolError asserts that err is a wire.ProtocolError for value.
func AssertProtocolError(t testing.TB, err error, value string) {
	t.Helper()
	pErr, ok := errors.AsType[*wire.ProtocolError](err)
	if !ok {
		t.Fatalf("expected *wire.ProtocolError, got %T: %v", err, err)
	}
	if pErr.Value != value {
		t.Errorf("ProtocolError value = %q, want %q", pErr.Value, value)
	}
}

// AssertDecodeError asserts that err is a wire.DecodeError over body.
func AssertDecodeError(t testing.TB, err error, body string) {
	t.Helper()
	dErr, ok := errors.AsType[*wire.DecodeError](err)
	if !ok {
		t.Fatalf("expected *wire.DecodeError, got %T: %v", err, err)
	}
	if string(dErr.Body) != body {
		t.Errorf("DecodeError body = %q, want %q", dErr.Body, body)
	}
}
