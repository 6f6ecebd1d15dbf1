// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"net/url"
	"strconv"
)

// PageSizes are the only per-page values the storefront accepts. Anything
// else falls back to DefaultPageSize.
var PageSizes = []int{10, 20, 50}

// DefaultPageSize is used when the requested size is absent or not allowed.
const DefaultPageSize = 10

// Pagination clamps a requested page against a result count. TotalPages is
// at least 1 even for an empty result set, and Page always lands in
// [1, TotalPages] — asking for page 99 of a 3-page set returns page 3,
// never an out-of-range empty page.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// ParsePagination reads per_page and page from a query string. Non-numeric
// or out-of-range input falls back to defaults; page is coerced to ≥ 1.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Page: 1, PerPage: DefaultPageSize}

	if raw := q.Get("per_page"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			for _, allowed := range PageSizes {
				if size == allowed {
					p.PerPage = size
					break
				}
			}
		}
	}

	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 1 {
			p.Page = page
		}
	}

	return p
}

// Paginate fixes the pagination against the full match count. It must be
// called with the count of the whole filtered set, not a page slice.
func (p Pagination) Paginate(total int) Pagination {
	if total < 0 {
		total = 0
	}
	p.Total = total
	p.TotalPages = (total + p.PerPage - 1) / p.PerPage
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	return p
}

// Offset is the SQL OFFSET for the clamped page. Always non-negative.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Sizes exposes the allowed per-page values to templates, for the
// page-size selector on listing forms.
func (p Pagination) Sizes() []int { return PageSizes }

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage is the previous page number, used by template links.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage is the next page number, used by template links.
func (p Pagination) NextPage() int { return p.Page + 1 }
