package store

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// PaginationParams describes one page of a list query. Build it with
// NewPaginationParams so out-of-range client input gets clamped.
type PaginationParams struct {
	Page     int
	PageSize int
	Search   string
}

// PaginationResult is the page metadata returned alongside list results.
type PaginationResult struct {
	Total       int64
	TotalPages  int
	CurrentPage int
	PageSize    int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
}

// NewPaginationParams clamps page to >= 1 and pageSize to [1, maxPageSize],
// substituting defaults for non-positive values.
func NewPaginationParams(page, pageSize int, search string) PaginationParams {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	return PaginationParams{Page: page, PageSize: pageSize, Search: search}
}

// CalculatePagination derives page metadata from a row count. A page past the
// end snaps back to the last page.
func CalculatePagination(total int64, currentPage, pageSize int) PaginationResult {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	if currentPage < 1 {
		currentPage = 1
	}
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	result := PaginationResult{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage,
		NextPage:    currentPage,
	}
	if result.HasPrev {
		result.PrevPage = currentPage - 1
	}
	if result.HasNext {
		result.NextPage = currentPage + 1
	}
	return result
}
