package simplepublish

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort names a concrete sort over entity fields.
type Sort struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc"`
}

// Page is the resolved pagination window. All means the caller explicitly
// opted out of pagination (elevated callers omitting page and limit).
type Page struct {
	Number int  `json:"number"`
	Limit  int  `json:"limit"`
	All    bool `json:"all"`
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.All || p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Filter is the typed, closed filter structure assembled exclusively by
// PlanQuery. Repositories must not accept filters from any other source.
type Filter struct {
	Statuses     []Status `json:"statuses,omitempty"`
	Search       string   `json:"search,omitempty"`
	SearchFields []string `json:"search_fields,omitempty"`
}

// Query is a role-aware list plan for one collection.
type Query struct {
	Kind   EntityKind `json:"kind"`
	Filter Filter     `json:"filter"`
	Sort   Sort       `json:"sort"`
	Page   Page       `json:"page"`
}

// PlanQuery builds a Query from untrusted request parameters.
//
// Non-elevated callers are always pinned to the kind's public statuses, no
// matter what status filter they ask for. Unknown sort keys fall back to the
// kind default rather than erroring. Elevated callers omitting both page and
// limit get the unpaginated full set.
func PlanQuery(sp KindSpec, params url.Values, role Role) Query {
	q := Query{
		Kind: sp.Kind,
		Sort: sp.DefaultSort,
		Page: Page{Number: 1, Limit: sp.DefaultLimit},
	}

	if name := params.Get("sort"); name != "" {
		if s, ok := sp.SortKeys[name]; ok {
			q.Sort = s
		}
	}

	if search := strings.TrimSpace(params.Get("search")); search != "" {
		q.Filter.Search = search
		q.Filter.SearchFields = sp.SearchFields
	}

	if role.Elevated() {
		q.Filter.Statuses = plannedStatuses(sp, params.Get("status"))
	} else {
		q.Filter.Statuses = append([]Status(nil), sp.Public...)
	}

	rawPage, rawLimit := params.Get("page"), params.Get("limit")
	if role.Elevated() && rawPage == "" && rawLimit == "" {
		q.Page = Page{All: true}
		return q
	}
	if n, err := strconv.Atoi(rawPage); err == nil && n > 0 {
		q.Page.Number = n
	}
	if n, err := strconv.Atoi(rawLimit); err == nil && n > 0 {
		q.Page.Limit = n
	}
	return q
}

// plannedStatuses resolves an elevated caller's status filter. Empty or
// "all" means no restriction; unknown values are dropped.
func plannedStatuses(sp KindSpec, raw string) []Status {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return nil
	}
	var statuses []Status
	for _, part := range strings.Split(raw, ",") {
		s := Status(strings.TrimSpace(part))
		if sp.HasStatus(s) {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// Pagination is the list envelope metadata: current page, total pages and
// total matching items.
type Pagination struct {
	Current    int   `json:"current"`
	Total      int   `json:"total"`
	TotalItems int64 `json:"total_items"`
}

// PaginationFor computes the envelope for a page over totalItems matches.
// Total pages is ceil(totalItems / limit).
func PaginationFor(p Page, totalItems int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((totalItems + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Current: p.Number, Total: pages, TotalItems: totalItems}
}

// EntityPage is one page of list results. Pagination is nil when the caller
// opted out of pagination; TotalItems is always populated.
type EntityPage struct {
	Items      []*Entity   `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
	TotalItems int64       `json:"total_items"`
}
