package shared

// ItemsPerPage is the fixed page size for listing views.
const ItemsPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int // resolved page, always within [1, max(TotalPages, 1)]
	PerPage    int
	Total      int
	TotalPages int // ceiling of Total/PerPage; zero when no rows exist
	PrevPage   int // Page-1, floored at zero
	NextPage   int // always Page+1; templates decide whether to link it
}

// NewPagination computes pagination metadata. A page request beyond the last
// page clamps down instead of erroring, and an empty listing still resolves
// to page 1 so views never render "page 0 of 0".
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = ItemsPerPage
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	last := totalPages
	if last < 1 {
		last = 1
	}
	if page > last {
		page = last
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
}

// Offset returns the row offset for the resolved page.
func (p Pagination) Offset() int {
	return p.PerPage * (p.Page - 1)
}
