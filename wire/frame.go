package wire

import (
	"encoding/json"
	"strconv"
)

// Frame prefixes payload with a Content-Length header block. The result is
// ready to pass to Send.
func Frame(payload []byte) string {
	return "Content-Length: " + strconv.Itoa(len(payload)) + "\r\n\r\n" + string(payload)
}

// FrameValue marshals v and frames the result.
func FrameValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Frame(data), nil
}
