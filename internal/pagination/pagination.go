// Package pagination turns a total count and a requested page into a query window.
package pagination

import (
	"math"
	"strconv"
)

// DefaultPageSize is the number of posts shown per list page.
const DefaultPageSize = 2

// Window describes one page of a listing.
type Window struct {
	Page      int
	PageSize  int
	Offset    int
	Limit     int
	PageCount int
	HasPrev   bool
	HasNext   bool
}

// ParsePage reads the page query parameter. Absent, non-numeric or non-positive values mean page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// PageCount returns ceil(total/pageSize), which is zero only when total is zero.
func PageCount(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	pageSize, _ = normalize(pageSize, 1)
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// Compute builds the full window. Pages past the last one are still valid and simply select nothing.
func Compute(total int64, pageSize, page int) Window {
	pageSize, page = normalize(pageSize, page)
	count := PageCount(total, pageSize)
	return Window{
		Page:      page,
		PageSize:  pageSize,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		PageCount: count,
		HasPrev:   page > 1,
		HasNext:   page < count,
	}
}

// Pages lists 1..PageCount for the pager.
func Pages(w Window) []int {
	pages := make([]int, 0, w.PageCount)
	for i := 1; i <= w.PageCount; i++ {
		pages = append(pages, i)
	}
	return pages
}

func normalize(pageSize, page int) (int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	// Keeps (page-1)*pageSize from overflowing; such a page is past any real table.
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return pageSize, page
}
