// Package jsonrpc classifies the JSON bodies carried by package wire into
// requests, notifications and responses, and builds pre-framed strings for
// wire.Transport.Send. Routing and tracking outstanding ids are left to the
// caller.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gossip-lsp/lspwire/wire"
)

// Version is the value of the "jsonrpc" member in every message.
const Version = "2.0"

// RawMessage holds params and results undecoded.
type RawMessage = json.RawMessage

// Message is a *Request, *Notification or *Response.
type Message interface {
	isJSONRPC()
}

// Request carries an id and expects a Response with the same id.
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

func (Request) isJSONRPC() {}

// Notification has a method but no id; nothing answers it.
type Notification struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

func (Notification) isJSONRPC() {}

// Response answers a Request. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Result  RawMessage `json:"result,omitempty"`
	Error   *Error     `json:"error,omitempty"`
}

func (Response) isJSONRPC() {}

// Error is the error member of a Response. It also serves as the Go error
// returned by DecodeMessage.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Error codes defined by JSON-RPC 2.0.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error codes added by the Language Server Protocol.
const (
	CodeServerNotInitialized = -32002
	CodeRequestCancelled     = -32800
	CodeContentModified      = -32801
)

// envelope has the union of every message's members.
type envelope struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params"`
	Result  RawMessage `json:"result"`
	Error   *Error     `json:"error"`
}

// DecodeMessage classifies a message body. Anything with a method is a
// request when its id is non-null and a notification otherwise; everything
// else is a response. A body that is not a JSON object fails with a
// CodeParseError *Error whose Data holds the decoder's message.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &Error{Code: CodeParseError, Message: "not a JSON-RPC message", Data: err.Error()}
	}

	switch {
	case env.Method != "" && env.ID.IsValid():
		return &Request{JSONRPC: env.JSONRPC, ID: env.ID, Method: env.Method, Params: env.Params}, nil
	case env.Method != "":
		return &Notification{JSONRPC: env.JSONRPC, Method: env.Method, Params: env.Params}, nil
	default:
		return &Response{JSONRPC: env.JSONRPC, ID: env.ID, Result: env.Result, Error: env.Error}, nil
	}
}

// Kind names the message variant: "request", "notification" or "response".
func Kind(m Message) string {
	switch m.(type) {
	case *Request:
		return "request"
	case *Notification:
		return "notification"
	case *Response:
		return "response"
	default:
		return "unknown"
	}
}

// NewRequest creates a request, marshaling params unless nil.
func NewRequest(id ID, method string, params any) (*Request, error) {
	data, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{JSONRPC: Version, ID: id, Method: method, Params: data}, nil
}

// NewNotification creates a notification, marshaling params unless nil.
func NewNotification(method string, params any) (*Notification, error) {
	data, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Notification{JSONRPC: Version, Method: method, Params: data}, nil
}

// NewResponse answers the request with the given id. A non-nil err becomes
// the error member, keeping its code when it is an *Error and using
// CodeInternalError otherwise. A nil result is sent as JSON null.
func NewResponse(id ID, result any, err error) *Response {
	resp := &Response{JSONRPC: Version, ID: id}
	if err != nil {
		resp.Error = asError(err)
		return resp
	}
	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = asError(err)
		return resp
	}
	resp.Result = data
	return resp
}

func asError(err error) *Error {
	if rpcErr, ok := errors.AsType[*Error](err); ok {
		return rpcErr
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

// Encode marshals msg and prefixes it with its Content-Length header block.
func Encode(msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", Kind(msg), err)
	}
	return wire.Frame(data), nil
}

// Send encodes msg and writes it to t.
func Send(t *wire.Transport, msg Message) error {
	raw, err := Encode(msg)
	if err != nil {
		return err
	}
	return t.Send(raw)
}

// Receive reads one frame from t and classifies it. A body that is valid
// JSON but not an object surfaces as a *wire.DecodeError.
func Receive(t *wire.Transport) (Message, error) {
	raw, err := t.ReceiveRaw()
	if err != nil {
		return nil, err
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return nil, &wire.DecodeError{Body: raw, Err: err}
	}
	return msg, nil
}

func marshalParams(v any) (RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
