// Package transport provides the byte streams a wire.Transport runs over.
// The primary case is the stdin/stdout pair of a language server child
// process; stdio, TCP, Unix domain sockets, named pipes, WebSocket, Node.js
// IPC and an in-memory pipe are also available.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// Transport provides a bidirectional byte stream for LSP framing.
// Each implementation wraps a specific communication mechanism (process
// pipes, TCP, etc.) and exposes it as a simple reader/writer pair.
type Transport interface {
	io.ReadWriteCloser
}

// HalfCloser is implemented by transports that can signal end of output to
// the peer while still reading from it.
type HalfCloser interface {
	CloseWrite() error
}

// ErrHalfCloseUnsupported is returned by CloseWrite when the underlying
// stream has no way to close only its write side.
var ErrHalfCloseUnsupported = errors.New("transport does not support half-close")

// CloseWrite closes the write side of t, leaving reads open.
func CloseWrite(t Transport) error {
	if hc, ok := t.(HalfCloser); ok {
		return hc.CloseWrite()
	}
	return ErrHalfCloseUnsupported
}

func closeConnWrite(conn net.Conn) error {
	if hc, ok := conn.(HalfCloser); ok {
		return hc.CloseWrite()
	}
	return ErrHalfCloseUnsupported
}

// Endpoint is a parsed endpoint string.
type Endpoint struct {
	Scheme  string
	Address string
	Listen  bool
}

// ParseEndpoint parses strings of the form:
//
//	stdio
//	tcp://127.0.0.1:9257
//	unix:///tmp/lsp.sock
//	pipe:///tmp/lsp.sock
//	ws://127.0.0.1:9258/lsp
//
// A "listen+" scheme prefix (listen+tcp://:9257) accepts a single
// connection instead of dialing.
func ParseEndpoint(s string) (Endpoint, error) {
	if s == "" || s == "stdio" {
		return Endpoint{Scheme: "stdio"}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parsing endpoint %q: %w", s, err)
	}

	ep := Endpoint{Scheme: u.Scheme}
	if rest, ok := strings.CutPrefix(ep.Scheme, "listen+"); ok {
		ep.Scheme = rest
		ep.Listen = true
	}

	switch ep.Scheme {
	case "tcp":
		ep.Address = u.Host
	case "unix", "pipe":
		ep.Address = u.Path
	case "ws":
		ep.Address = u.Host
		if ep.Listen {
			break
		}
		u.Scheme = "ws"
		ep.Address = u.String()
	default:
		return Endpoint{}, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if ep.Address == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q has no address", s)
	}
	return ep, nil
}

// Open dials or listens on the endpoint and returns the resulting stream.
func (ep Endpoint) Open() (Transport, error) {
	switch ep.Scheme {
	case "stdio":
		return Stdio(), nil
	case "tcp":
		if ep.Listen {
			return ListenTCP(ep.Address)
		}
		return DialTCP(ep.Address)
	case "unix":
		if ep.Listen {
			return ListenSocket(ep.Address)
		}
		return DialSocket(ep.Address)
	case "pipe":
		if ep.Listen {
			return ListenPipe(ep.Address)
		}
		return DialPipe(ep.Address)
	case "ws":
		if ep.Listen {
			return ListenWebSocket(ep.Address)
		}
		return DialWebSocket(ep.Address)
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", ep.Scheme)
	}
}

// Open parses s and opens the endpoint.
func Open(s string) (Transport, error) {
	ep, err := ParseEndpoint(s)
	if err != nil {
		return nil, err
	}
	return ep.Open()
}
