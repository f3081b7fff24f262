package transport

import (
	"errors"
	"os"
)

// NodeIPC creates a transport for Node.js IPC communication, as used by the
// VS Code extension host. The child reads on fd 3 and writes to stdout.
func NodeIPC() Transport {
	reader := os.NewFile(3, "node-ipc-in")
	writer := os.Stdout
	return &ipcTransport{reader: reader, writer: writer}
}

type ipcTransport struct {
	reader *os.File
	writer *os.File
}

func (t *ipcTransport) Read(p []byte) (int, error)  { return t.reader.Read(p) }
func (t *ipcTransport) Write(p []byte) (int, error) { return t.writer.Write(p) }

// Close closes the IPC read end only; stdout belongs to the process.
func (t *ipcTransport) Close() error {
	if t.reader == nil {
		return errors.New("node ipc: fd 3 is not open")
	}
	return t.reader.Close()
}
