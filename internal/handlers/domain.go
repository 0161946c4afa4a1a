package handlers

import (
	"fmt"

	"github.com/xelth-com/eckodoo/internal/services/odoo"
)

// parseDomain converts a decoded JSON domain into odoo criteria. An object
// is an exact-match Filter; an array holds [field, operator, value] triplets
// and the prefix operators "&", "|" and "!".
func parseDomain(raw interface{}) (odoo.Criteria, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return odoo.Filter(v), nil
	case []interface{}:
		domain := make(odoo.Domain, 0, len(v))
		for i, el := range v {
			parsed, err := parseElement(el)
			if err != nil {
				return nil, fmt.Errorf("domain element %d: %w", i, err)
			}
			domain = append(domain, parsed)
		}
		return domain, nil
	default:
		return nil, fmt.Errorf("domain must be an object or an array, got %T", raw)
	}
}

func parseElement(el interface{}) (odoo.Element, error) {
	switch v := el.(type) {
	case string:
		switch op := odoo.Operator(v); op {
		case odoo.And, odoo.Or, odoo.Not:
			return op, nil
		}
		return nil, fmt.Errorf("unknown operator %q", v)
	case []interface{}:
		if len(v) != 3 {
			return nil, fmt.Errorf("term needs 3 items, got %d", len(v))
		}
		field, ok := v[0].(string)
		if !ok || field == "" {
			return nil, fmt.Errorf("term field must be a non-empty string")
		}
		op, ok := v[1].(string)
		if !ok || op == "" {
			return nil, fmt.Errorf("term operator must be a non-empty string")
		}
		return odoo.Term{Field: field, Operator: op, Value: v[2]}, nil
	default:
		return nil, fmt.Errorf("expected operator or term, got %T", el)
	}
}
