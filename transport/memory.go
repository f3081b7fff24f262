package transport

import (
	"io"
	"sync"
)

// MemoryPipe creates a pair of connected in-memory transports for testing.
// Data written to one side can be read from the other. Writes never block;
// each Write is queued as its own chunk so readers observe the same read
// boundaries a pipe would produce.
func MemoryPipe() (client Transport, server Transport) {
	toServer := newQueue()
	toClient := newQueue()
	return &memoryTransport{in: toClient, out: toServer}, &memoryTransport{in: toServer, out: toClient}
}

type memoryTransport struct {
	in  *queue
	out *queue
}

func (m *memoryTransport) Read(p []byte) (int, error)  { return m.in.read(p) }
func (m *memoryTransport) Write(p []byte) (int, error) { return m.out.write(p) }

// CloseWrite ends the stream seen by the peer; this side can keep reading.
func (m *memoryTransport) CloseWrite() error {
	m.out.close()
	return nil
}

func (m *memoryTransport) Close() error {
	m.in.close()
	m.out.close()
	return nil
}

// queue is a one-directional chunk queue. After close, readers drain what
// is left and then see io.EOF; writers get io.ErrClosedPipe.
type queue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	chunks [][]byte
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

func (q *queue) write(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p) == 0 {
		return 0, nil
	}
	q.chunks = append(q.chunks, append([]byte(nil), p...))
	q.ready.Signal()
	return len(p), nil
}

func (q *queue) read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.chunks) == 0 {
		if q.closed {
			return 0, io.EOF
		}
		q.ready.Wait()
	}

	n := copy(p, q.chunks[0])
	if n == len(q.chunks[0]) {
		q.chunks = q.chunks[1:]
	} else {
		q.chunks[0] = q.chunks[0][n:]
	}
	return n, nil
}

func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.ready.Broadcast()
}
