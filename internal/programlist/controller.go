// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package programlist

import "sync"

// Msg is a single input change to a Controller.
type Msg interface {
	apply(c *Controller)
}

// SearchChanged replaces the title search query.
type SearchChanged struct{ Query string }

// CategoryChanged replaces the category filter; "" clears it.
type CategoryChanged struct{ CategoryID string }

// StatusChanged replaces the status filter.
type StatusChanged struct{ Status Status }

// SortChanged replaces the sort key.
type SortChanged struct{ SortBy SortKey }

// StateChanged replaces the whole view-state, as when a request carries
// it in the query string.
type StateChanged struct{ State ViewState }

// DataLoaded replaces the program and category collections.
type DataLoaded struct{ Snapshot Snapshot }

func (m SearchChanged) apply(c *Controller)   { c.state.SearchQuery = m.Query }
func (m CategoryChanged) apply(c *Controller) { c.state.CategoryFilter = m.CategoryID }
func (m StatusChanged) apply(c *Controller)   { c.state.StatusFilter = m.Status }
func (m SortChanged) apply(c *Controller)     { c.state.SortBy = m.SortBy }
func (m StateChanged) apply(c *Controller)    { c.state = m.State }
func (m DataLoaded) apply(c *Controller)      { c.snap = m.Snapshot }

// Controller owns one list instance: its data, its view-state and the
// current derived view. Every message recomputes the view through the
// engine and notifies subscribers with the result.
type Controller struct {
	mu     sync.Mutex
	engine *Engine
	snap   Snapshot
	state  ViewState
	view   View
	subs   map[int]func(View)
	nextID int
}

// NewController creates a controller in the default view-state with no
// data. A nil engine computes every view without memoization.
func NewController(engine *Engine) *Controller {
	c := &Controller{
		engine: engine,
		state:  DefaultViewState(),
		subs:   make(map[int]func(View)),
	}
	c.view = c.engine.Compute(c.snap, c.state)
	return c
}

// Dispatch applies msgs in order, recomputing and notifying after each
// one. It returns the final view.
func (c *Controller) Dispatch(msgs ...Msg) View {
	var v View
	for _, m := range msgs {
		c.mu.Lock()
		m.apply(c)
		c.view = c.engine.Compute(c.snap, c.state)
		v = c.view
		subs := c.subscribers()
		c.mu.Unlock()

		for _, fn := range subs {
			fn(v)
		}
	}
	if len(msgs) == 0 {
		return c.View()
	}
	return v
}

// Batch applies msgs in order and recomputes once, notifying subscribers
// with the final view only. Intermediate states are never computed.
func (c *Controller) Batch(msgs ...Msg) View {
	if len(msgs) == 0 {
		return c.View()
	}

	c.mu.Lock()
	for _, m := range msgs {
		m.apply(c)
	}
	c.view = c.engine.Compute(c.snap, c.state)
	v := c.view
	subs := c.subscribers()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v
}

// subscribers copies the subscriber set. Caller holds mu.
func (c *Controller) subscribers() []func(View) {
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Subscribe registers fn to receive every recomputed view. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(View)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// View returns the current derived view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// State returns the current view-state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
