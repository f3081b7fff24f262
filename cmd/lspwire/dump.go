package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"

	"github.com/gossip-lsp/lspwire/jsonrpc"
	"github.com/gossip-lsp/lspwire/wire"
)

func runDump(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	withKind := fs.Bool("kind", false, "prefix each line with the JSON-RPC message kind")
	strict := fs.Bool("strict", false, "stop at the first frame whose body is not JSON")
	if err := fs.Parse(args); err != nil {
		e.logger.Error("invalid dump flags", "error", err)
		return exitUsage
	}

	s, err := openEndpoint(e)
	if err != nil {
		e.logger.Error("open endpoint", "error", err)
		return exitStream
	}
	defer s.Close()

	tr := newWire(e, s.r, io.Discard)

	var frames, skipped int
	var line bytes.Buffer
	for ctx.Err() == nil {
		raw, err := tr.ReceiveRaw()
		if err != nil {
			switch {
			case wire.Closed(err):
				e.logger.Debug("stream closed", "frames", frames, "skipped", skipped)
				return exitOK
			case wire.Recoverable(err) && !*strict:
				skipped++
				e.logger.Warn("skipping undecodable frame", "error", err)
				continue
			default:
				e.logger.Error("reading frame", "frames", frames, "error", err)
				return exitStream
			}
		}
		frames++

		line.Reset()
		if *withKind {
			kind := "unknown"
			if msg, err := jsonrpc.DecodeMessage(raw); err == nil {
				kind = jsonrpc.Kind(msg)
			}
			line.WriteString(kind)
			line.WriteByte('\t')
		}
		if err := json.Compact(&line, raw); err != nil {
			e.logger.Error("compacting frame", "error", err)
			return exitInternal
		}
		line.WriteByte('\n')
		if _, err := e.stdout.Write(line.Bytes()); err != nil {
			e.logger.Error("writing output", "error", err)
			return exitInternal
		}
	}
	return exitOK
}
