package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gossip-lsp/lspwire/wire"
)

func runRelay(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		e.logger.Error("invalid relay flags", "error", err)
		return exitUsage
	}

	s, err := openEndpoint(e)
	if err != nil {
		e.logger.Error("open endpoint", "error", err)
		return exitStream
	}
	if s.closer == nil {
		e.logger.Error("relay needs a remote endpoint, not stdio")
		return exitUsage
	}

	local := newWire(e, e.stdin, e.stdout)
	remote := newWire(e, s.r, s.w)

	var closing atomic.Bool
	finished := make(chan struct{})
	var finish sync.Once
	done := func() { finish.Do(func() { close(finished) }) }

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := pump(e, local, remote, "client->server", &closing); err != nil || closing.Load() {
			return err
		}
		// Local input is exhausted. The server may still owe replies, so only
		// its input is closed and the relay runs until it disconnects.
		if err := s.CloseWrite(); err != nil {
			e.logger.Debug("remote endpoint cannot half-close, stopping relay", "error", err)
			done()
		}
		return nil
	})
	g.Go(func() error {
		defer done()
		return pump(e, remote, local, "server->client", &closing)
	})
	go func() {
		select {
		case <-finished:
		case <-gctx.Done():
		}
		// Unblock whichever side is still reading.
		closing.Store(true)
		s.Close()
		if c, ok := e.stdin.(io.Closer); ok {
			c.Close()
		}
	}()

	if err := g.Wait(); err != nil {
		e.logger.Error("relay stopped", "error", err)
		return exitStream
	}
	return exitOK
}

// pump forwards frames from src to dst until src closes. Bodies that are
// not JSON are dropped, since the frame boundary is still known.
func pump(e *env, src, dst *wire.Transport, direction string, closing *atomic.Bool) error {
	log := e.logger.With("direction", direction)
	for n := 0; ; {
		raw, err := src.ReceiveRaw()
		if err != nil {
			switch {
			case closing.Load(), wire.Closed(err):
				log.Debug("source closed", "frames", n)
				return nil
			case wire.Recoverable(err):
				log.Warn("dropping undecodable frame", "error", err)
				continue
			default:
				return fmt.Errorf("%s: %w", direction, err)
			}
		}
		if err := dst.SendBytes([]byte(wire.Frame(raw))); err != nil {
			if closing.Load() {
				return nil
			}
			return fmt.Errorf("%s: %w", direction, err)
		}
		n++
		log.Debug("relayed frame", "seq", n, "len", len(raw))
	}
}
