package jsonrpc

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type idKind uint8

const (
	idNone idKind = iota
	idNumber
	idString
)

// ID is a request id. The zero ID is null, which is what a notification
// carries and what a response to an unparseable request echoes back.
type ID struct {
	kind idKind
	num  int64
	str  string
}

// IntID returns a numeric id.
func IntID(v int64) ID { return ID{kind: idNumber, num: v} }

// StringID returns a string id.
func StringID(v string) ID { return ID{kind: idString, str: v} }

// IsValid reports whether id is non-null.
func (id ID) IsValid() bool { return id.kind != idNone }

// Value returns the id as an int64, a string, or nil.
func (id ID) Value() any {
	switch id.kind {
	case idNumber:
		return id.num
	case idString:
		return id.str
	}
	return nil
}

// String formats id as it appears on the wire.
func (id ID) String() string {
	switch id.kind {
	case idNumber:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return strconv.Quote(id.str)
	}
	return "null"
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return strconv.AppendInt(nil, id.num, 10), nil
	case idString:
		return json.Marshal(id.str)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, a string, or an integer that fits in int64.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return &Error{Code: CodeInvalidRequest, Message: "id must be an integer, a string or null", Data: string(data)}
	}
	*id = IntID(n)
	return nil
}
