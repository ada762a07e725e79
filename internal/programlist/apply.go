// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package programlist derives the filtered and sorted program view shown on
// the admin list page.
package programlist

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"carepath/internal/models"
)

// UncategorizedLabel is shown for programs without a resolvable category.
const UncategorizedLabel = "Uncategorized"

// Apply filters then stably sorts programs according to state. The input
// slice is never modified; the result is a new slice.
func Apply(programs []models.Program, state ViewState) []models.Program {
	out := make([]models.Program, 0, len(programs))
	query := strings.ToLower(state.SearchQuery)

	for _, p := range programs {
		if !matchesSearch(p, query) || !matchesCategory(p, state.CategoryFilter) || !matchesStatus(p, state.StatusFilter) {
			continue
		}
		out = append(out, p)
	}

	sortPrograms(out, state.SortBy)
	return out
}

func matchesSearch(p models.Program, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), lowerQuery)
}

func matchesCategory(p models.Program, filter string) bool {
	if filter == "" {
		return true
	}
	return p.CategoryKey() == filter
}

func matchesStatus(p models.Program, status Status) bool {
	switch status {
	case StatusActive:
		return p.IsActive
	case StatusInactive:
		return !p.IsActive
	default:
		return true
	}
}

func sortPrograms(programs []models.Program, key SortKey) {
	switch key {
	case SortNewest:
		slices.SortStableFunc(programs, func(a, b models.Program) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortOldest:
		slices.SortStableFunc(programs, func(a, b models.Program) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortAlphabetical:
		// A Collator is not safe for concurrent use.
		c := collate.New(language.English)
		slices.SortStableFunc(programs, func(a, b models.Program) int {
			return c.CompareString(a.Title, b.Title)
		})
	case SortDuration:
		slices.SortStableFunc(programs, func(a, b models.Program) int {
			return b.Duration() - a.Duration()
		})
	}
}

// CategoryName resolves a category ID to its name. It never fails: a nil ID
// or one missing from categories yields UncategorizedLabel.
func CategoryName(categories []models.Category, id *uuid.UUID) string {
	if id == nil {
		return UncategorizedLabel
	}
	for _, c := range categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return UncategorizedLabel
}
