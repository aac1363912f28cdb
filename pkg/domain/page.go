package domain

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is an offset-based page selection.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest applies defaults and clamps the page size.
func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// From is the zero-based index of the first row in the page.
func (p PageRequest) From() int {
	return (p.Page - 1) * p.PageSize
}

// To is the zero-based index of the last row in the page (inclusive).
func (p PageRequest) To() int {
	return p.From() + p.PageSize - 1
}

// Offset and Limit map the range onto SQL.
func (p PageRequest) Offset() int { return p.From() }
func (p PageRequest) Limit() int  { return p.PageSize }

// TotalPages returns ceil(total/pageSize), or 0 when there are no rows.
func (p PageRequest) TotalPages(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Page is one page of results plus the total row count.
type Page[T any] struct {
	Items []T
	Total int
}
