package transport

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want Endpoint
	}{
		{"", Endpoint{Scheme: "stdio"}},
		{"stdio", Endpoint{Scheme: "stdio"}},
		{"tcp://127.0.0.1:9257", Endpoint{Scheme: "tcp", Address: "127.0.0.1:9257"}},
		{"listen+tcp://:9257", Endpoint{Scheme: "tcp", Address: ":9257", Listen: true}},
		{"unix:///tmp/lsp.sock", Endpoint{Scheme: "unix", Address: "/tmp/lsp.sock"}},
		{"listen+pipe:///tmp/p.sock", Endpoint{Scheme: "pipe", Address: "/tmp/p.sock", Listen: true}},
		{"ws://localhost:9258/lsp", Endpoint{Scheme: "ws", Address: "ws://localhost:9258/lsp"}},
		{"listen+ws://:9258", Endpoint{Scheme: "ws", Address: ":9258", Listen: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseEndpoint_Errors(t *testing.T) {
	for _, in := range []string{"http://example.com", "tcp://", "unix://", "::"} {
		_, err := ParseEndpoint(in)
		require.Error(t, err, in)
	}
}

func TestMemoryPipe(t *testing.T) {
	client, server := MemoryPipe()

	_, err := client.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := server.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))

	_, err = server.Write([]byte("bye"))
	require.NoError(t, err)
	require.NoError(t, server.Close())

	data, err := io.ReadAll(client)
	require.NoError(t, err)
	require.Equal(t, "bye", string(data))

	_, err = server.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestPipes(t *testing.T) {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	tr := Pipes(outR, inW)

	go func() {
		outW.Write([]byte("from server"))
	}()
	buf := make([]byte, 32)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "from server", string(buf[:n]))

	go func() {
		tr.Write([]byte("to server"))
	}()
	n, err = inR.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "to server", string(buf[:n]))

	require.NoError(t, tr.Close())
	_, err = inR.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestMemoryPipe_CloseWrite(t *testing.T) {
	client, server := MemoryPipe()

	_, err := client.Write([]byte("last"))
	require.NoError(t, err)
	require.NoError(t, CloseWrite(client))

	data, err := io.ReadAll(server)
	require.NoError(t, err)
	require.Equal(t, "last", string(data))

	// The other direction stays open.
	_, err = server.Write([]byte("reply"))
	require.NoError(t, err)
	buf := make([]byte, 8)
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "reply", string(buf[:n]))

	_, err = client.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestMemoryPipe_PreservesWriteBoundaries(t *testing.T) {
	client, server := MemoryPipe()
	_, err := client.Write([]byte("ab"))
	require.NoError(t, err)
	_, err = client.Write([]byte("cd"))
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := server.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ab", string(buf[:n]))
	n, err = server.Read(buf[:1])
	require.NoError(t, err)
	require.Equal(t, "c", string(buf[:n]))
	n, err = server.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "d", string(buf[:n]))
}

func TestPipes_CloseWrite(t *testing.T) {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	tr := Pipes(outR, inW)

	require.NoError(t, CloseWrite(tr))
	_, err := inR.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)

	go func() {
		outW.Write([]byte("still open"))
	}()
	buf := make([]byte, 32)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "still open", string(buf[:n]))

	require.NoError(t, tr.Close())
}

func TestCloseWrite_Unsupported(t *testing.T) {
	type plain struct{ Transport }
	require.ErrorIs(t, CloseWrite(plain{}), ErrHalfCloseUnsupported)
}

func TestTCPEndpoint_CloseWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	tr, err := Open("tcp://" + ln.Addr().String())
	require.NoError(t, err)
	defer tr.Close()

	peer := <-accepted
	defer peer.Close()

	_, err = tr.Write([]byte("done"))
	require.NoError(t, err)
	require.NoError(t, CloseWrite(tr))

	data, err := io.ReadAll(peer)
	require.NoError(t, err)
	require.Equal(t, "done", string(data))

	_, err = peer.Write([]byte("ack"))
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = io.ReadFull(tr, buf)
	require.NoError(t, err)
	require.Equal(t, "ack", string(buf))
}

func TestTCPEndpoint(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	tr, err := Open("tcp://" + ln.Addr().String())
	require.NoError(t, err)
	defer tr.Close()

	peer := <-accepted
	defer peer.Close()

	_, err = tr.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(peer, buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf))
}

func TestSocketEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lsp.sock")

	served := make(chan Transport, 1)
	go func() {
		tr, err := ListenSocket(path)
		if err == nil {
			served <- tr
		}
	}()

	var client Transport
	require.Eventually(t, func() bool {
		var err error
		client, err = DialSocket(path)
		return err == nil
	}, time.Second*2, time.Millisecond*10)
	defer client.Close()

	server := <-served
	_, err := client.Write([]byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	require.Equal(t, "abc", string(buf))

	require.NoError(t, server.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
