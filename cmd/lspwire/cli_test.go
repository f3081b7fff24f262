package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gossip-lsp/lspwire/config"
	"github.com/gossip-lsp/lspwire/wire"
	"github.com/gossip-lsp/lspwire/wiretest"
)

func runCLI(t *testing.T, stdin io.Reader, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := run(context.Background(), stdin, &out, &errb, args)
	return code, out.String(), errb.String()
}

func TestRunUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no command", nil, "missing command"},
		{"unknown command", []string{"explode"}, `unknown command "explode"`},
		{"watch without config", []string{"-watch", "dump"}, "-watch requires -config"},
		{"bad flag", []string{"-nope"}, "flag provided but not defined"},
		{"bad endpoint", []string{"-endpoint", "gopher://x", "dump"}, "unsupported endpoint scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, _, stderr := runCLI(t, strings.NewReader(""), tt.args...)
			require.Equal(t, exitUsage, code)
			require.Contains(t, stderr, tt.msg)
		})
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, strings.NewReader(""), "-h")
	require.Equal(t, exitOK, code)
	require.Contains(t, stderr, "usage: lspwire")
	require.Contains(t, stderr, "relay")
}

func TestDump(t *testing.T) {
	t.Parallel()

	input := wiretest.Frames(t,
		map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"},
		map[string]any{"jsonrpc": "2.0", "method": "initialized"},
	)

	code, stdout, _ := runCLI(t, strings.NewReader(input), "dump")
	require.Equal(t, exitOK, code)
	require.Equal(t,
		`{"id":1,"jsonrpc":"2.0","method":"initialize"}`+"\n"+
			`{"jsonrpc":"2.0","method":"initialized"}`+"\n",
		stdout)
}

func TestDumpKind(t *testing.T) {
	t.Parallel()

	input := wiretest.Frames(t,
		map[string]any{"jsonrpc": "2.0", "id": 1, "result": nil},
		[]any{1, 2},
	)

	code, stdout, _ := runCLI(t, strings.NewReader(input), "dump", "-kind")
	require.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Equal(t, []string{"response\t{\"id\":1,\"jsonrpc\":\"2.0\",\"result\":null}", "unknown\t[1,2]"}, lines)
}

func TestDumpSkipsUndecodableFrames(t *testing.T) {
	t.Parallel()

	input := wire.Frame([]byte("garbage")) + wiretest.Frame(t, map[string]any{"ok": true})

	code, stdout, stderr := runCLI(t, strings.NewReader(input), "dump")
	require.Equal(t, exitOK, code)
	require.Equal(t, `{"ok":true}`+"\n", stdout)
	require.Contains(t, stderr, "skipping undecodable frame")

	code, stdout, _ = runCLI(t, strings.NewReader(input), "dump", "-strict")
	require.Equal(t, exitStream, code)
	require.Empty(t, stdout)
}

func TestDumpFailsOnTruncatedStream(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, strings.NewReader("Content-Length: 10\r\n\r\n{}"), "dump")
	require.Equal(t, exitStream, code)
	require.Contains(t, stderr, "unexpected EOF")
}

func TestDumpFailsOnProtocolError(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, strings.NewReader("Content-Length: abc\r\n\r\n"), "dump")
	require.Equal(t, exitStream, code)
	require.Contains(t, stderr, "invalid Content-Length")
}

func TestFrame(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCLI(t, strings.NewReader("{\"a\": 1}\n[1, 2]\n\"s\""), "frame")
	require.Equal(t, exitOK, code)
	require.Equal(t,
		"Content-Length: 7\r\n\r\n{\"a\":1}"+
			"Content-Length: 5\r\n\r\n[1,2]"+
			"Content-Length: 3\r\n\r\n\"s\"",
		stdout)
}

func TestFrameWithHeaders(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCLI(t, strings.NewReader(`{}`), "frame",
		"-header", "Content-Type: application/vscode-jsonrpc; charset=utf-8",
		"-header", "X-Trace: 1")
	require.Equal(t, exitOK, code)
	require.Equal(t, "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nX-Trace: 1\r\nContent-Length: 2\r\n\r\n{}", stdout)

	got, err := wire.New(strings.NewReader(stdout), io.Discard).Receive()
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, got)
}

func TestFrameRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, strings.NewReader(`{"a":`), "frame")
	require.Equal(t, exitStream, code)
	require.Contains(t, stderr, "decoding input value")
}

func TestFrameThenDump(t *testing.T) {
	t.Parallel()

	input := `{"jsonrpc":"2.0","method":"$/progress","params":{"token":"t","value":{"kind":"end"}}}`
	code, framed, _ := runCLI(t, strings.NewReader(input), "frame")
	require.Equal(t, exitOK, code)

	code, dumped, _ := runCLI(t, strings.NewReader(framed), "dump")
	require.Equal(t, exitOK, code)
	require.JSONEq(t, input, dumped)
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lspwire.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\nlog_format = \"json\"\nmax_content_length = 4\n"), 0o600))

	input := wiretest.Frame(t, map[string]any{"too": "long"})
	code, _, stderr := runCLI(t, strings.NewReader(input), "-config", path, "dump")
	require.Equal(t, exitStream, code)
	require.Contains(t, stderr, `"level":"ERROR"`)
	require.Contains(t, stderr, "content length exceeds limit")
	require.Contains(t, stderr, `"session":`)
}

func TestConfigFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lspwire.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_format = "yaml"`), 0o600))

	code, _, stderr := runCLI(t, strings.NewReader(""), "-config", path, "dump")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "log_format")
}

func TestReloadKeepsFlagOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lspwire.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"warn\"\n"), 0o600))

	opts := globalOptions{configPath: path, logLevel: "debug", watch: true}
	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)

	store := config.NewStore(cfg)
	r := newReloader(store, opts, slog.New(slog.DiscardHandler))

	require.NoError(t, os.WriteFile(path, []byte("log_level = \"error\"\nendpoint = \"tcp://127.0.0.1:9257\"\n"), 0o600))
	require.NoError(t, r.Reload())
	require.Equal(t, "debug", store.Get().LogLevel)
	require.Equal(t, "tcp://127.0.0.1:9257", store.Get().Endpoint)
}

func TestRelayRejectsStdio(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, strings.NewReader(""), "relay")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "remote endpoint")
}

func TestRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverErr := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverErr <- err
			return
		}
		server := wire.New(conn, conn)
		req, err := server.Receive()
		if err != nil {
			conn.Close()
			serverErr <- err
			return
		}
		id := req.(map[string]any)["id"]
		raw, _ := wire.FrameValue(map[string]any{"jsonrpc": "2.0", "id": id, "result": "pong"})
		err = server.Send(raw)
		conn.Close()
		serverErr <- err
	}()

	stdinR, stdinW := io.Pipe()
	stdout := &wiretest.ShortWriter{Max: 1 << 20}
	var stderr bytes.Buffer

	codeCh := make(chan int, 1)
	go func() {
		codeCh <- run(context.Background(), stdinR, stdout, &stderr, []string{"-endpoint", "tcp://" + ln.Addr().String(), "relay"})
	}()

	_, err = stdinW.Write([]byte(wiretest.Frame(t, map[string]any{"jsonrpc": "2.0", "id": 7, "method": "ping"})))
	require.NoError(t, err)

	select {
	case code := <-codeCh:
		require.Equal(t, exitOK, code)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not finish")
	}
	require.NoError(t, <-serverErr)

	got, err := wire.New(strings.NewReader(stdout.String()), io.Discard).Receive()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"jsonrpc": "2.0", "id": json.Number("7"), "result": "pong"}, got)
}

func TestRelay_FinishedStdinStillGetsReplies(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverErr := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverErr <- err
			return
		}
		defer conn.Close()
		server := wire.New(conn, conn)
		req, err := server.Receive()
		if err != nil {
			serverErr <- err
			return
		}
		// Reply only after the client has run out of input.
		time.Sleep(50 * time.Millisecond)
		id := req.(map[string]any)["id"]
		raw, _ := wire.FrameValue(map[string]any{"jsonrpc": "2.0", "id": id, "result": "late"})
		if err := server.Send(raw); err != nil {
			serverErr <- err
			return
		}
		if _, err := server.Receive(); !wire.Closed(err) {
			serverErr <- fmt.Errorf("expected end of input after the request, got %v", err)
			return
		}
		serverErr <- nil
	}()

	stdin := strings.NewReader(wiretest.Frame(t, map[string]any{"jsonrpc": "2.0", "id": 9007199254740993, "method": "shutdown"}))
	code, stdout, stderr := runCLI(t, stdin, "-endpoint", "tcp://"+ln.Addr().String(), "relay")
	require.Equal(t, exitOK, code, stderr)
	require.NoError(t, <-serverErr)

	got, err := wire.New(strings.NewReader(stdout), io.Discard).Receive()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"jsonrpc": "2.0", "id": json.Number("9007199254740993"), "result": "late"}, got)
}
