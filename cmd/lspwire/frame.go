package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gossip-lsp/lspwire/wire"
)

func runFrame(ctx context.Context, e *env, args []string) int {
	fs := flag.NewFlagSet("frame", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var headers headerList
	fs.Var(&headers, "header", "extra header line to emit before Content-Length (repeatable)")
	if err := fs.Parse(args); err != nil {
		e.logger.Error("invalid frame flags", "error", err)
		return exitUsage
	}

	s, err := openEndpoint(e)
	if err != nil {
		e.logger.Error("open endpoint", "error", err)
		return exitStream
	}
	defer s.Close()

	tr := newWire(e, strings.NewReader(""), s.w)
	prefix := headers.prefix()

	dec := json.NewDecoder(e.stdin)
	var body bytes.Buffer
	for n := 0; ctx.Err() == nil; n++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				e.logger.Debug("input finished", "frames", n)
				return exitOK
			}
			e.logger.Error("decoding input value", "index", n, "error", err)
			return exitStream
		}

		body.Reset()
		if err := json.Compact(&body, raw); err != nil {
			e.logger.Error("compacting input value", "index", n, "error", err)
			return exitInternal
		}
		if err := tr.Send(prefix + wire.Frame(body.Bytes())); err != nil {
			e.logger.Error("sending frame", "index", n, "error", err)
			return exitStream
		}
	}
	return exitOK
}

// headerList collects repeated -header flags.
type headerList []string

func (h *headerList) String() string { return strings.Join(*h, ", ") }

func (h *headerList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("invalid header line %q", v)
	}
	*h = append(*h, v)
	return nil
}

// prefix renders the headers as "\r\n"-terminated lines.
func (h headerList) prefix() string {
	var b strings.Builder
	for _, line := range h {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	return b.String()
}
