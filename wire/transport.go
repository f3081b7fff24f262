package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
)

// Transport reads and writes Content-Length framed messages as specified by
// the LSP base protocol. It takes exclusive ownership of both streams.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	logger *slog.Logger

	bufSize          int
	maxContentLength int
}

// New creates a Transport reading frames from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Transport {
	t := &Transport{
		writer:  w,
		logger:  slog.New(slog.DiscardHandler),
		bufSize: defaultBufferSize,
	}
	for _, o := range opts {
		o(t)
	}
	t.reader = bufio.NewReaderSize(r, t.bufSize)
	return t
}

// Send writes raw to the sink. raw must already carry its own header block;
// Frame builds one. Partial writes are retried until every byte has been
// accepted or the sink fails.
func (t *Transport) Send(raw string) error {
	return t.SendBytes([]byte(raw))
}

// SendBytes is Send for a byte slice.
func (t *Transport) SendBytes(raw []byte) error {
	if err := writeAll(t.writer, raw); err != nil {
		t.logger.Debug("send failed", "len", len(raw), "error", err)
		return &IOError{Op: "send", Err: err}
	}
	t.logger.Debug("sent frame", "len", len(raw))
	return nil
}

// Receive reads one frame and returns its body decoded into the generic
// encoding/json representation (map[string]any, []any, string, bool or nil).
// Numbers come back as json.Number so integers beyond 2^53 keep their exact
// digits.
func (t *Transport) Receive() (any, error) {
	body, err := t.readFrame()
	if err != nil {
		return nil, err
	}
	v, err := decodeValue(body)
	if err != nil {
		return nil, &DecodeError{Body: body, Err: err}
	}
	return v, nil
}

// ReceiveInto reads one frame and unmarshals its body into v.
func (t *Transport) ReceiveInto(v any) error {
	body, err := t.readFrame()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{Body: body, Err: err}
	}
	return nil
}

// ReceiveRaw reads one frame and returns its body once it has been checked
// to hold a single valid JSON value.
func (t *Transport) ReceiveRaw() (json.RawMessage, error) {
	var raw json.RawMessage
	if err := t.ReceiveInto(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Buffered returns the number of bytes read from the source but not yet
// consumed by a frame.
func (t *Transport) Buffered() int {
	return t.reader.Buffered()
}

func (t *Transport) readFrame() ([]byte, error) {
	n, err := t.readHeader()
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &IOError{Op: "read body", Err: err}
	}
	t.logger.Debug("received frame", "content_length", n)
	return body, nil
}

// decodeValue parses exactly one JSON value from body.
func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = ErrTrailingData
		}
		return nil, err
	}
	return v, nil
}

func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		p = p[n:]
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}
