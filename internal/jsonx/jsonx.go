// Package jsonx provides tolerant JSON scalar types for API payloads.
// The server is free to send a numeric field as a number, a quoted string,
// a bool or null; these types coerce all of that without ever failing the
// enclosing unmarshal. Unparseable input degrades to the zero value.
package jsonx

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Int64 decodes from number, numeric string, bool or null.
type Int64 int64

func (i *Int64) UnmarshalJSON(data []byte) error {
	*i = Int64(coerceInt(data))
	return nil
}

func (i Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(i), 10)), nil
}

// Int decodes from number, numeric string, bool or null.
type Int int

func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int(coerceInt(data))
	return nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(i))), nil
}

// String decodes from string, number, bool or null. Numbers keep their
// literal form ("42" stays "42", not "42.0").
type String string

func (s *String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = String(v)
		return nil
	}
	// Objects and arrays make no sense as a scalar; degrade to empty.
	if data[0] == '{' || data[0] == '[' {
		*s = ""
		return nil
	}
	*s = String(data)
	return nil
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func coerceInt(data []byte) int64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}
	switch {
	case bytes.Equal(data, []byte("true")):
		return 1
	case bytes.Equal(data, []byte("false")):
		return 0
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	// "7.0" style floats arrive from some endpoints; truncate.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f)
	}
	return 0
}
