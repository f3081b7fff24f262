package transport

import (
	"errors"
	"io"
	"sync"
)

// Pipes wraps the stdout and stdin pipes of a running child process, as
// returned by exec.Cmd.StdoutPipe and exec.Cmd.StdinPipe. Starting,
// waiting on and killing the process stay with the caller. Stdio uses the
// same pairing for the current process.
func Pipes(stdout io.ReadCloser, stdin io.WriteCloser) Transport {
	return &processTransport{stdout: stdout, stdin: stdin}
}

type processTransport struct {
	stdout io.ReadCloser
	stdin  io.WriteCloser

	stdinOnce sync.Once
	stdinErr  error
}

func (p *processTransport) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *processTransport) Write(b []byte) (int, error) { return p.stdin.Write(b) }

// CloseWrite closes the child's stdin, which servers treat as end of input.
// Repeated calls, including the one made by Close, report the first result.
func (p *processTransport) CloseWrite() error {
	p.stdinOnce.Do(func() { p.stdinErr = p.stdin.Close() })
	return p.stdinErr
}

// Close closes stdin first so the server sees end of input, then stdout.
func (p *processTransport) Close() error {
	return errors.Join(p.CloseWrite(), p.stdout.Close())
}
