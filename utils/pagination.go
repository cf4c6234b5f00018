package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// Pagination is the parsed page/limit query of list endpoints.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads ?page= and ?limit=. Missing or invalid values fall
// back to the defaults, limit is capped at MaxLimit and page at MaxPage.
func ParsePagination(c echo.Context) Pagination {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Skip is the number of documents before the current page.
func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// TotalPages is ceil(total/limit).
func (p Pagination) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
