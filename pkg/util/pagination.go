package util

import (
	"net/url"
	"strconv"
)

// PageRequest is a 1-based page number with a page size.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePageRequest reads "page" and "limit" query values. Missing or
// malformed values fall back to page 1 and defaultLimit; limit is capped at
// maxLimit.
func ParsePageRequest(pageStr, limitStr string, defaultLimit, maxLimit int) PageRequest {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// PageLinks builds absolute next/previous URLs for a paginated response by
// rewriting the "page" query parameter of the current request URL.
func PageLinks(current *url.URL, req PageRequest, total int64) (next, previous *string) {
	build := func(page int) *string {
		u := *current
		q := u.Query()
		if page <= 1 {
			q.Del("page")
		} else {
			q.Set("page", strconv.Itoa(page))
		}
		u.RawQuery = q.Encode()
		s := u.String()
		return &s
	}

	if int64(req.Page*req.Limit) < total {
		next = build(req.Page + 1)
	}
	if req.Page > 1 {
		previous = build(req.Page - 1)
	}
	return next, previous
}
