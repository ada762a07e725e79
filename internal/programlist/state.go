// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package programlist

import (
	"net/url"
)

// Status selects programs by their active flag.
type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortAlphabetical SortKey = "alphabetical"
	SortDuration     SortKey = "duration"
)

// Query string keys for the view-state.
const (
	paramSearch   = "q"
	paramCategory = "category"
	paramStatus   = "status"
	paramSort     = "sort"
)

// ViewState is the request-scoped filter and sort selection. It is never
// persisted. The zero value is not the default state; use DefaultViewState.
type ViewState struct {
	SearchQuery    string
	CategoryFilter string // "" means all categories
	StatusFilter   Status
	SortBy         SortKey
}

// DefaultViewState returns the state a freshly opened list starts with.
func DefaultViewState() ViewState {
	return ViewState{StatusFilter: StatusAll, SortBy: SortNewest}
}

// ParseViewState reads the view-state from a query string. Missing keys fall
// back to defaults. Unrecognized status or sort values are kept as given;
// Apply treats them as "keep all" and "no reordering".
func ParseViewState(q url.Values) ViewState {
	s := DefaultViewState()
	s.SearchQuery = q.Get(paramSearch)
	s.CategoryFilter = q.Get(paramCategory)
	if v := q.Get(paramStatus); v != "" {
		s.StatusFilter = Status(v)
	}
	if v := q.Get(paramSort); v != "" {
		s.SortBy = SortKey(v)
	}
	return s
}

// Query encodes the state back into a query string, omitting defaults.
func (s ViewState) Query() url.Values {
	q := url.Values{}
	if s.SearchQuery != "" {
		q.Set(paramSearch, s.SearchQuery)
	}
	if s.CategoryFilter != "" {
		q.Set(paramCategory, s.CategoryFilter)
	}
	if s.StatusFilter != "" && s.StatusFilter != StatusAll {
		q.Set(paramStatus, string(s.StatusFilter))
	}
	if s.SortBy != "" && s.SortBy != SortNewest {
		q.Set(paramSort, string(s.SortBy))
	}
	return q
}

// IsDefault reports whether no filter is narrowing the list.
func (s ViewState) IsDefault() bool {
	return s.SearchQuery == "" && s.CategoryFilter == "" &&
		(s.StatusFilter == "" || s.StatusFilter == StatusAll)
}
