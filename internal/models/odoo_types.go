package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var jsonFalse = []byte("false")

// OdooString is a string that also accepts Odoo's `false` for empty text
// fields.
type OdooString string

// UnmarshalJSON accepts a JSON string, false (empty) or true ("true").
func (s *OdooString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = OdooString(str)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if !b {
			*s = ""
			return nil
		}
		*s = "true"
		return nil
	}

	return errors.New("OdooString: cannot unmarshal value into string")
}

// Value implements driver.Valuer.
func (s OdooString) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *OdooString) Scan(value interface{}) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OdooString(v)
	case []byte:
		*s = OdooString(string(v))
	default:
		return fmt.Errorf("failed to scan OdooString: %v", value)
	}
	return nil
}

func (s OdooString) String() string {
	return string(s)
}

// Many2One is a relational field as returned by read: `[id, "display name"]`,
// or `false` when unset.
type Many2One struct {
	ID   int64
	Name string
}

// Valid reports whether the relation is set.
func (m Many2One) Valid() bool { return m.ID > 0 }

func (m *Many2One) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonFalse) || bytes.Equal(data, []byte("null")) {
		*m = Many2One{}
		return nil
	}

	// A bare id is what write-side payloads and some computed fields carry.
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*m = Many2One{ID: id}
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) == 0 {
		return fmt.Errorf("Many2One: cannot unmarshal %s", data)
	}
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return fmt.Errorf("Many2One: invalid id %s", pair[0])
	}

	var name OdooString
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return fmt.Errorf("Many2One: invalid name %s", pair[1])
		}
	}

	*m = Many2One{ID: id, Name: string(name)}
	return nil
}

// MarshalJSON writes the id only, which is what create and write expect.
func (m Many2One) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return jsonFalse, nil
	}
	return json.Marshal(m.ID)
}
