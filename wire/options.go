package wire

import "log/slog"

const defaultBufferSize = 64 * 1024

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used for per-frame debug output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithBufferSize sets the size of the read buffer wrapped around the source.
// Values below 16 fall back to bufio's minimum.
func WithBufferSize(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.bufSize = n
		}
	}
}

// WithMaxContentLength rejects frames declaring a body larger than n bytes
// with a ProtocolError before any body buffer is allocated. A positive limit
// also caps header lines at MaxHeaderLine bytes. Zero means no limit.
func WithMaxContentLength(n int) Option {
	return func(t *Transport) {
		if n >= 0 {
			t.maxContentLength = n
		}
	}
}
