package wiretest

import (
	"testing"

	"github.com/gossip-lsp/lspwire/transport"
	"github.com/gossip-lsp/lspwire/wire"
)

// Pair is a client Transport connected to a fake server Transport over an
// in-memory pipe. Whatever the client sends, the server receives, and the
// other way around.
type Pair struct {
	Client *wire.Transport
	Server *wire.Transport

	clientConn transport.Transport
	serverConn transport.Transport
}

// NewPair creates a connected Pair. Both ends are closed when the test
// completes.
func NewPair(t testing.TB, opts ...wire.Option) *Pair {
	clientConn, serverConn := transport.MemoryPipe()
	p := &Pair{
		Client:     wire.New(clientConn, clientConn, opts...),
		Server:     wire.New(serverConn, serverConn, opts...),
		clientConn: clientConn,
		serverConn: serverConn,
	}
	t.Cleanup(func() {
		p.clientConn.Close()
		p.serverConn.Close()
	})
	return p
}

// CloseServer closes the server end, so the client observes end of stream.
func (p *Pair) CloseServer() {
	p.serverConn.Close()
}
