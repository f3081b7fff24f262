package wiretest

import (
	"io"
	"sync"
)

// ChunkReader delivers data in fixed chunks, one chunk per Read, to simulate
// messages split or batched across pipe reads. It returns io.EOF once every
// chunk has been delivered.
type ChunkReader struct {
	chunks [][]byte
	index  int
}

// NewChunkReader creates a ChunkReader over the given chunks.
func NewChunkReader(chunks ...string) *ChunkReader {
	byteChunks := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		byteChunks[i] = []byte(chunk)
	}

	return &ChunkReader{chunks: byteChunks}
}

// SplitEvery cuts s into chunks of at most n bytes.
func SplitEvery(s string, n int) *ChunkReader {
	var chunks []string
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	if s != "" {
		chunks = append(chunks, s)
	}

	return NewChunkReader(chunks...)
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}

	chunk := r.chunks[r.index]

	n := copy(p, chunk)
	if n < len(chunk) {
		r.chunks[r.index] = chunk[n:]
	} else {
		r.index++
	}

	return n, nil
}

// ShortWriter accepts at most Max bytes per Write call without reporting an
// error, forcing callers to retry partial writes.
type ShortWriter struct {
	Max int

	mu    sync.Mutex
	buf   []byte
	calls int
}

func (w *ShortWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.calls++
	n := min(len(p), w.Max)
	w.buf = append(w.buf, p[:n]...)

	return n, nil
}

// String returns everything written so far.
func (w *ShortWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return string(w.buf)
}

// Calls returns the number of Write calls observed.
func (w *ShortWriter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.calls
}

// FailingWriter accepts Limit bytes and then fails every Write with Err.
type FailingWriter struct {
	Limit int
	Err   error

	written int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	room := w.Limit - w.written
	if room <= 0 {
		return 0, w.Err
	}
	if len(p) > room {
		w.written += room
		return room, w.Err
	}
	w.written += len(p)

	return len(p), nil
}

// StalledWriter accepts nothing and reports no error.
type StalledWriter struct{}

func (StalledWriter) Write([]byte) (int, error) { return 0, nil }
