package query

// Pagination describes a page request. After is an internal row id cursor.
type Pagination struct {
	Limit  *int
	Offset *int
	After  *uint
	Order  string
}

// IsDesc reports whether results should be returned newest first.
func (p *Pagination) IsDesc() bool {
	return p != nil && p.Order == "desc"
}

// LimitOr returns the requested limit or fallback when unset.
func (p *Pagination) LimitOr(fallback int) int {
	if p == nil || p.Limit == nil || *p.Limit <= 0 {
		return fallback
	}
	return *p.Limit
}
