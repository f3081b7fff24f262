// Package wire implements the LSP base protocol framing over a pair of
// byte streams, typically the stdin and stdout pipes of a language server
// child process.
//
// Each frame is a block of "Name: value" header lines terminated by an
// empty "\r\n" line, followed by exactly Content-Length bytes of UTF-8
// JSON:
//
//	Content-Length: 52\r\n
//	\r\n
//	{"jsonrpc":"2.0","method":"initialized","params":{}}
//
// A Transport sends caller-framed messages and receives framed messages as
// decoded JSON values, with numbers kept as json.Number. It holds no correlation state and spawns no
// goroutines. One Send and one Receive may be in flight at the same time;
// concurrent calls to the same method must be serialized by the caller.
// There are no timeouts: a caller that gives up on a blocked call must
// discard the Transport, since a frame may be half consumed.
//
// Errors fall into three kinds. An *IOError means the sink or source failed
// or ended early. A *ProtocolError means the header block was malformed.
// Both leave the stream desynchronized and the Transport should be
// discarded. The one exception is an *IOError wrapping io.EOF itself, which
// Receive returns only when the stream ended cleanly between frames; see
// Closed. A *DecodeError means the frame was delimited correctly but its
// body is not JSON; the next Receive can still be attempted.
package wire
