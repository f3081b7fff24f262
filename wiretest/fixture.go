package wiretest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gossip-lsp/lspwire/wire"
)

// Frame marshals v and frames it with a correct Content-Length header.
func Frame(t testing.TB, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal frame body: %v", err)
	}
	return wire.Frame(data)
}

// Frames concatenates the framed encodings of vs into one stream.
func Frames(t testing.TB, vs ...any) string {
	t.Helper()
	var b strings.Builder
	for _, v := range vs {
		b.WriteString(Frame(t, v))
	}
	return b.String()
}

// RawFrame builds a frame from explicit header lines and a body. Each header
// gets a "\r\n" line ending and the block is closed with "\r\n".
func RawFrame(body string, headers ...string) string {
	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
