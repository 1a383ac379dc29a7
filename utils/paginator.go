package utils

import "strconv"

// Pagination describes one resolved page window over a counted listing.
// Pages are 1-based. Out-of-range page numbers clamp to the nearest valid
// page instead of erroring, matching tolerant paginator behavior.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
	Offset     int   `json:"-"`
}

// Paginate resolves the raw ?page= parameter against the listing total.
// Non-numeric or missing values resolve to page 1; a page past the end
// clamps to the last page. An empty listing still has one (empty) page.
func Paginate(pageParam string, total int64, pageSize int) Pagination {
	if pageSize < 1 {
		pageSize = 10
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	page := 1
	if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
		page = p
	}
	if page > totalPages {
		page = totalPages
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Offset:     (page - 1) * pageSize,
	}
}
