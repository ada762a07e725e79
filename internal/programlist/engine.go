// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package programlist

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"carepath/internal/models"
)

// DefaultMemoSize is the number of computed views kept by an Engine.
const DefaultMemoSize = 256

// Snapshot is an immutable copy of the program and category collections.
// Version identifies the contents: two snapshots with the same version must
// hold the same data. An empty version disables memoization.
type Snapshot struct {
	Version    string            `json:"version"`
	Programs   []models.Program  `json:"programs"`
	Categories []models.Category `json:"categories"`
}

// NewSnapshot stamps the collections with a fresh version.
func NewSnapshot(programs []models.Program, categories []models.Category) Snapshot {
	return Snapshot{Version: uuid.NewString(), Programs: programs, Categories: categories}
}

// View is the derived list page model. Its slices are shared between
// callers of a memoized Engine and must be treated as read-only.
type View struct {
	Programs   []models.Program
	Categories []models.Category
	State      ViewState
	Total      int  // programs before filtering
	Empty      bool // no program survived filtering
}

// CategoryName resolves a program's category against the view's categories.
func (v View) CategoryName(p models.Program) string {
	if p.Category != nil && p.Category.Name != "" {
		return p.Category.Name
	}
	return CategoryName(v.Categories, p.CategoryID)
}

// Compute derives a View without memoization.
func Compute(s Snapshot, state ViewState) View {
	programs := Apply(s.Programs, state)
	return View{
		Programs:   programs,
		Categories: s.Categories,
		State:      state,
		Total:      len(s.Programs),
		Empty:      len(programs) == 0,
	}
}

type memoKey struct {
	version string
	state   ViewState
}

// Engine memoizes Compute against the exact (snapshot version, view-state)
// tuple. It is safe for concurrent use.
type Engine struct {
	memo *lru.Cache[memoKey, View]
}

// NewEngine creates an Engine remembering up to size views.
func NewEngine(size int) (*Engine, error) {
	memo, err := lru.New[memoKey, View](size)
	if err != nil {
		return nil, fmt.Errorf("create view memo: %w", err)
	}
	return &Engine{memo: memo}, nil
}

// Compute returns the memoized view for the inputs, computing it on a miss.
func (e *Engine) Compute(s Snapshot, state ViewState) View {
	if e == nil || s.Version == "" {
		return Compute(s, state)
	}

	key := memoKey{version: s.Version, state: state}
	if v, ok := e.memo.Get(key); ok {
		return v
	}
	v := Compute(s, state)
	e.memo.Add(key, v)
	return v
}

// Len returns the number of memoized views.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return e.memo.Len()
}
