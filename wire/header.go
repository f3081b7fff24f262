package wire

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const (
	headerTerminator = "\r\n"
	contentLengthKey = "content-length:"

	// MaxHeaderLine bounds a single header line, including its line ending,
	// on Transports created with WithMaxContentLength.
	MaxHeaderLine = 8 * 1024
)

// readHeader consumes a header block and returns the declared body length.
// Only an exact "\r\n" line ends the block; a bare "\n" line is treated like
// any other unrecognized header. A block without Content-Length yields zero.
// io.EOF is reported only when the stream ends before the first byte of the
// block; any later end of stream is io.ErrUnexpectedEOF.
func (t *Transport) readHeader() (int, error) {
	contentLength := 0
	for started := false; ; started = true {
		line, err := t.readLine()
		if _, ok := err.(*ProtocolError); ok {
			return 0, err
		}
		if err != nil {
			if err == io.EOF && (started || line != "") {
				err = io.ErrUnexpectedEOF
			}
			return 0, &IOError{Op: "read header", Err: err}
		}
		if line == headerTerminator {
			return contentLength, nil
		}
		if !strings.HasPrefix(strings.ToLower(line), contentLengthKey) {
			continue
		}

		_, val, _ := strings.Cut(line, ":")
		val = strings.TrimSpace(val)
		n, err := strconv.ParseUint(val, 10, strconv.IntSize-1)
		if err != nil {
			return 0, &ProtocolError{Msg: "invalid Content-Length", Value: val, Err: err}
		}
		if t.maxContentLength > 0 && n > uint64(t.maxContentLength) {
			return 0, &ProtocolError{Msg: "invalid Content-Length", Value: val, Err: ErrContentTooLarge}
		}
		contentLength = int(n)
	}
}

// readLine reads up to and including the next '\n'. Without a content
// length limit lines may be any length.
func (t *Transport) readLine() (string, error) {
	if t.maxContentLength == 0 {
		return t.reader.ReadString('\n')
	}

	var line []byte
	for {
		frag, err := t.reader.ReadSlice('\n')
		if len(line)+len(frag) > MaxHeaderLine {
			head := append(line, frag...)[:32]
			return "", &ProtocolError{Msg: "header line", Value: string(head), Err: ErrHeaderTooLong}
		}
		line = append(line, frag...)
		if err != bufio.ErrBufferFull {
			return string(line), err
		}
	}
}
