package shared

import (
	"net/url"
	"strconv"
)

type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset from q. Invalid values fall back to
// defaultLimit and 0; limit is clamped to maxLimit when maxLimit is positive.
func ParsePage(q url.Values, defaultLimit, maxLimit int) Page {
	page := Page{Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		page.Offset = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}
