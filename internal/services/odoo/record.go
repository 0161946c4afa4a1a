package odoo

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Record is one record as returned by read or search_read: field name to
// decoded XML-RPC value (string, bool, int64, float64, []interface{}, ...).
type Record map[string]interface{}

// ID returns the record's "id" field.
func (r Record) ID() (int64, bool) {
	return toInt64(r["id"])
}

// Decode converts records into a slice of structs via their json tags, e.g.
// []models.ResPartner. Use models.OdooString and models.Many2One for fields
// where Odoo returns false instead of an empty value.
func Decode(records []Record, out interface{}) error {
	jsonData, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal raw result: %w", err)
	}

	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("failed to unmarshal into target: %w", err)
	}

	return nil
}

func toRecords(raw []map[string]interface{}) []Record {
	records := make([]Record, 0, len(raw))
	for _, m := range raw {
		records = append(records, Record(m))
	}
	return records
}

// toInt64 converts a decoded numeric value to int64.
func toInt64(v interface{}) (int64, bool) {
	if v == nil {
		return 0, false
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(val.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(val.Float()), true
	}
	return 0, false
}
