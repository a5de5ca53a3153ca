package api

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/routesales/internal/failure"
)

// statusOK is the envelope status the server uses for success. Anything else
// is a business-level rejection and Message carries the reason.
const statusOK = 1

// Envelope is the wrapper every endpoint responds with:
//
//	{"status": 1, "message": "ok", "data": ...}
//
// Data is kept raw because the same key arrives as an object, an array or
// null depending on the endpoint and the outcome. Decode helpers below
// absorb every observed shape.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the server accepted the request.
func (e *Envelope) OK() bool { return e.Status == statusOK }

// Err converts a rejected envelope into a server failure. It returns nil for
// a successful envelope.
func (e *Envelope) Err() error {
	if e.OK() {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = "request rejected by server"
	}
	return failure.Server(msg)
}

// Items splits envelope data into raw records. A bare object yields one
// element; null, absent or mistyped data yields none. Elements of a
// malformed array are dropped rather than failing the page.
func (e *Envelope) Items() []json.RawMessage {
	raw := trimmed(e.Data)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := items[:0]
		for _, item := range items {
			b := bytes.TrimSpace(item)
			if len(b) > 0 && b[0] == '{' {
				out = append(out, item)
			}
		}
		return out
	case '{':
		return []json.RawMessage{raw}
	default:
		return nil
	}
}

// One returns the single raw record carried by the envelope: the object
// itself, or the first element of an array. ok is false when there is none.
func (e *Envelope) One() (json.RawMessage, bool) {
	items := e.Items()
	if len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// DecodeList decodes envelope data into a slice of T following the Items
// shape rules.
func DecodeList[T any](e *Envelope) []T {
	items := e.Items()
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DecodeOne decodes envelope data into a single T. An array decodes as its
// first element; null, absent, empty-array or mistyped data reports no
// record (nil, false) without an error.
func DecodeOne[T any](e *Envelope) (*T, bool) {
	raw, ok := e.One()
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func trimmed(raw json.RawMessage) []byte {
	b := bytes.TrimSpace(raw)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	return b
}
