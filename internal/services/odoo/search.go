package odoo

// SearchOption adjusts paging and ordering of Search and SearchRead.
type SearchOption func(*searchParams)

type searchParams struct {
	limit  *int
	offset *int
	order  string
}

// Limit caps the number of results. n must be positive.
func Limit(n int) SearchOption {
	return func(p *searchParams) { p.limit = &n }
}

// Offset skips the first n results. n must not be negative.
func Offset(n int) SearchOption {
	return func(p *searchParams) { p.offset = &n }
}

// Order sets the sort specification, e.g. "write_date desc, id".
func Order(order string) SearchOption {
	return func(p *searchParams) { p.order = order }
}

func buildSearchParams(opts []SearchOption) (searchParams, error) {
	var p searchParams
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	if p.limit != nil && *p.limit <= 0 {
		return p, invalid("limit", "limit must be a positive number, got %d", *p.limit)
	}
	if p.offset != nil && *p.offset < 0 {
		return p, invalid("offset", "offset must not be negative, got %d", *p.offset)
	}
	return p, nil
}

// kwargs renders the params as execute_kw keyword arguments.
func (p searchParams) kwargs() map[string]interface{} {
	kw := map[string]interface{}{}
	if p.limit != nil {
		kw["limit"] = *p.limit
	}
	if p.offset != nil {
		kw["offset"] = *p.offset
	}
	if p.order != "" {
		kw["order"] = p.order
	}
	return kw
}
