package web

import (
	"net/http"
	"strconv"
	"strings"
)

// pageParams is the request-scoped pagination state parsed from the query
// string. The services return complete filtered lists; slicing happens here.
type pageParams struct {
	Page int // 1-based
	Size int
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

func parsePageParams(r *http.Request) pageParams {
	p := pageParams{Page: 1, Size: defaultPageSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 {
		p.Size = v
		if p.Size > maxPageSize {
			p.Size = maxPageSize
		}
	}
	return p
}

// slice returns the requested page of items plus the full count. A page past
// the end comes back empty rather than erroring.
func slicePage[T any](items []T, p pageParams) ([]T, int) {
	total := len(items)
	start := (p.Page - 1) * p.Size
	if start >= total {
		return []T{}, total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return items[start:end], total
}

// sortParams reads sort=field&dir=asc|desc.
func sortParams(r *http.Request) (sortBy string, desc bool) {
	q := r.URL.Query()
	return q.Get("sort"), strings.EqualFold(q.Get("dir"), "desc")
}

// dateRange reads the from/to bounds shared by listings and reports.
func dateRange(r *http.Request) (from, to string) {
	q := r.URL.Query()
	return q.Get("from"), q.Get("to")
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
