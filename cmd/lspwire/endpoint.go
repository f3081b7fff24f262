package main

import (
	"fmt"
	"io"

	"github.com/gossip-lsp/lspwire/transport"
	"github.com/gossip-lsp/lspwire/wire"
)

// stream is the byte source/sink pair a subcommand works on.
type stream struct {
	r      io.Reader
	w      io.Writer
	closer io.Closer
}

func (s *stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// CloseWrite signals end of input to the remote side, leaving its output
// readable.
func (s *stream) CloseWrite() error {
	if hc, ok := s.closer.(transport.HalfCloser); ok {
		return hc.CloseWrite()
	}
	return transport.ErrHalfCloseUnsupported
}

// openEndpoint resolves the configured endpoint. "stdio" maps to the
// command's own stdin and stdout.
func openEndpoint(e *env) (*stream, error) {
	ep, err := transport.ParseEndpoint(e.cfg.Get().Endpoint)
	if err != nil {
		return nil, err
	}
	if ep.Scheme == "stdio" {
		return &stream{r: e.stdin, w: e.stdout}, nil
	}

	e.logger.Debug("opening endpoint", "scheme", ep.Scheme, "address", ep.Address, "listen", ep.Listen)
	conn, err := ep.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s endpoint %s: %w", ep.Scheme, ep.Address, err)
	}
	return &stream{r: conn, w: conn, closer: conn}, nil
}

func newWire(e *env, r io.Reader, w io.Writer) *wire.Transport {
	return wire.New(r, w, e.cfg.Get().WireOptions(e.logger)...)
}
