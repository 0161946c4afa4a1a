package odoo

import (
	"reflect"
	"sort"
)

// Criteria is a search domain in any of the accepted shapes. Terms renders it
// in Odoo's list-of-triplets grammar.
type Criteria interface {
	Terms() []interface{}
}

// Filter matches records whose fields equal the given values. Slice values
// match with the "in" operator.
type Filter map[string]interface{}

// Terms renders the filter in sorted field order so that the same filter
// always produces the same request.
func (f Filter) Terms() []interface{} {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	terms := make([]interface{}, 0, len(fields))
	for _, field := range fields {
		value := f[field]
		op := "="
		if isList(value) {
			op = "in"
		}
		terms = append(terms, []interface{}{field, op, value})
	}
	return terms
}

func isList(v interface{}) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	if k == reflect.Slice {
		// []byte is sent as base64, not as a list
		return reflect.TypeOf(v).Elem().Kind() != reflect.Uint8
	}
	return k == reflect.Array
}

// Element is one item of a Domain: a Term or a logical operator.
type Element interface {
	domainElement() interface{}
}

// Term is a (field, operator, value) condition, e.g. {"name", "ilike", "test"}.
type Term struct {
	Field    string
	Operator string
	Value    interface{}
}

func (t Term) domainElement() interface{} {
	return []interface{}{t.Field, t.Operator, t.Value}
}

// Operator is one of Odoo's prefix logical operators.
type Operator string

const (
	And Operator = "&"
	Or  Operator = "|"
	Not Operator = "!"
)

func (o Operator) domainElement() interface{} { return string(o) }

// Domain is an ordered sequence of terms and prefix operators. Consecutive
// terms are implicitly and-ed by the server.
type Domain []Element

func (d Domain) Terms() []interface{} {
	terms := make([]interface{}, 0, len(d))
	for _, el := range d {
		terms = append(terms, el.domainElement())
	}
	return terms
}

// Where is shorthand for a single-term domain.
func Where(field, operator string, value interface{}) Domain {
	return Domain{Term{Field: field, Operator: operator, Value: value}}
}

// domainTerms renders c, treating nil as the empty domain.
func domainTerms(c Criteria) []interface{} {
	if c == nil {
		return []interface{}{}
	}
	return c.Terms()
}
