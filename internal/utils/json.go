package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// DecodeJSON reads a single JSON value from r into v. Numbers are kept
// exact: integral ones become int64 and the rest float64, so ids survive the
// trip to XML-RPC as <int> instead of <double>.
func DecodeJSON(r io.Reader, v *interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}

	*v = normalizeNumbers(raw)
	return nil
}

func normalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]interface{}:
		for k, el := range t {
			t[k] = normalizeNumbers(el)
		}
		return t
	case []interface{}:
		for i, el := range t {
			t[i] = normalizeNumbers(el)
		}
		return t
	default:
		return v
	}
}
