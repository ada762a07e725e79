// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the CarePath admin server.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carepath/internal/cache"
	"carepath/internal/metrics"
	"carepath/internal/middleware"
	"carepath/internal/models"
	"carepath/internal/programform"
	"carepath/internal/programlist"
	"carepath/internal/render"
	"carepath/internal/result"
	"carepath/internal/storage"
)

// ProgramActions is the slice of actions.Programs the admin pages use.
type ProgramActions interface {
	GetCategories(ctx context.Context) result.Result[[]models.Category]
	GetPrograms(ctx context.Context) result.Result[[]models.Program]
	GetProgramByID(ctx context.Context, id uuid.UUID) result.Result[models.ProgramDetail]
	CreateProgram(ctx context.Context, params models.CreateProgramParams) result.Result[models.Program]
	SetProgramActive(ctx context.Context, id uuid.UUID, active bool) result.Result[bool]
	DeleteProgram(ctx context.Context, id uuid.UUID) result.Result[uuid.UUID]
}

// MediaResolver turns a stored video reference into a playable URL.
type MediaResolver interface {
	MediaURL(ctx context.Context, ref string) (string, error)
}

// Admin groups the program management handlers.
type Admin struct {
	renderer   *render.Renderer
	actions    ProgramActions
	engine     *programlist.Engine
	routeCache *cache.RouteCache
	media      MediaResolver
	metrics    *metrics.Metrics
}

// NewAdmin creates the admin handler group. engine, routeCache, media and
// m may be nil.
func NewAdmin(
	renderer *render.Renderer,
	actions ProgramActions,
	engine *programlist.Engine,
	routeCache *cache.RouteCache,
	media MediaResolver,
	m *metrics.Metrics,
) *Admin {
	return &Admin{
		renderer:   renderer,
		actions:    actions,
		engine:     engine,
		routeCache: routeCache,
		media:      media,
		metrics:    m,
	}
}

// resultError carries a failed envelope through error-returning code.
type resultError struct {
	info   *result.ErrorInfo
	status int
}

func (e *resultError) Error() string {
	if e.info != nil && e.info.Message != "" {
		return e.info.Message
	}
	return result.MsgUnexpected
}

func failed[T any](r result.Result[T]) error {
	return &resultError{info: r.Error, status: r.Status}
}

// loadSnapshot fetches programs and categories concurrently. The pair is
// cached per route generation; both fetches must succeed.
func (a *Admin) loadSnapshot(ctx context.Context) (programlist.Snapshot, error) {
	return cache.Load(ctx, a.routeCache, programform.ProgramsRoute, func(ctx context.Context) (programlist.Snapshot, error) {
		var (
			programs   []models.Program
			categories []models.Category
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res := a.actions.GetPrograms(gctx)
			if !res.Success {
				return failed(res)
			}
			programs = res.Data
			return nil
		})
		g.Go(func() error {
			res := a.actions.GetCategories(gctx)
			if !res.Success {
				return failed(res)
			}
			categories = res.Data
			return nil
		})
		if err := g.Wait(); err != nil {
			return programlist.Snapshot{}, err
		}
		return programlist.NewSnapshot(programs, categories), nil
	})
}

// ProgramsList renders the filterable program list. The view-state comes
// from the query string, so every filter combination is a shareable URL.
func (a *Admin) ProgramsList(w http.ResponseWriter, r *http.Request) {
	snap, err := a.loadSnapshot(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctrl := programlist.NewController(a.engine)
	view := ctrl.Batch(
		programlist.DataLoaded{Snapshot: snap},
		programlist.StateChanged{State: programlist.ParseViewState(r.URL.Query())},
	)
	a.metrics.RecordListView(string(view.State.SortBy))

	data := &render.PageData{
		Title:   "Treatment Programs",
		Section: "programs",
		Data: map[string]any{
			"View":          view,
			"Query":         view.State.Query().Encode(),
			"StatusOptions": statusOptions(view.State.StatusFilter),
			"SortOptions":   sortOptions(view.State.SortBy),
		},
	}
	if r.URL.Query().Get("created") != "" {
		data.Flashes = append(data.Flashes, render.Flash{Type: "success", Message: "Program created successfully."})
	}
	a.renderer.Page(w, r, "programs_list", data)
}

func statusOptions(selected programlist.Status) []render.Option {
	opts := []struct {
		value programlist.Status
		label string
	}{
		{programlist.StatusAll, "All Status"},
		{programlist.StatusActive, "Active"},
		{programlist.StatusInactive, "Inactive"},
	}
	out := make([]render.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, render.Option{Value: string(o.value), Label: o.label, Selected: o.value == selected})
	}
	return out
}

func sortOptions(selected programlist.SortKey) []render.Option {
	opts := []struct {
		value programlist.SortKey
		label string
	}{
		{programlist.SortNewest, "Newest First"},
		{programlist.SortOldest, "Oldest First"},
		{programlist.SortAlphabetical, "Alphabetical"},
		{programlist.SortDuration, "Duration"},
	}
	out := make([]render.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, render.Option{Value: string(o.value), Label: o.label, Selected: o.value == selected})
	}
	return out
}

// ProgramNew renders an empty create-program form.
func (a *Admin) ProgramNew(w http.ResponseWriter, r *http.Request) {
	cats := a.actions.GetCategories(r.Context())
	if !cats.Success {
		a.fail(w, r, failed(cats))
		return
	}
	a.renderForm(w, r, http.StatusOK, programform.View{
		State:       programform.Idle,
		Values:      programform.DefaultValues(),
		FieldErrors: map[string]string{},
	}, cats.Data)
}

// ProgramCreate runs one create-program submission from the HTML form.
// Success redirects to the list; anything else re-renders the form with
// the submitted values, field errors and banner.
func (a *Admin) ProgramCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	values := formValues(r.PostForm)

	var last result.Result[models.Program]
	form := programform.New(programform.SubmitterFunc(
		func(ctx context.Context, params models.CreateProgramParams) (result.Result[models.Program], error) {
			last = a.actions.CreateProgram(ctx, params)
			return last, nil
		}), a.routeCache)

	// A closed connection does not abort a create that already started.
	state, err := form.Submit(context.WithoutCancel(r.Context()), values)
	if err != nil {
		slog.Warn("program submit rejected", "error", err)
	}
	view := form.View()

	switch state {
	case programform.Success:
		a.metrics.RecordSubmission("success")
		target := programform.ProgramsRoute + "?created=" + url.QueryEscape(view.Created.ID.String())
		if render.IsHTMX(r) {
			w.Header().Set("HX-Redirect", target)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	case programform.Idle:
		a.metrics.RecordSubmission("invalid")
	default:
		a.metrics.RecordSubmission("failed")
	}

	switch last.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		a.fail(w, r, failed(last))
		return
	}

	// htmx only swaps 2xx responses, so partial re-renders answer 200.
	status := http.StatusOK
	if !render.IsHTMX(r) {
		status = http.StatusUnprocessableEntity
		if state == programform.Failed && last.Status >= http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
	}
	var cats []models.Category
	if res := a.actions.GetCategories(r.Context()); res.Success {
		cats = res.Data
	}
	a.renderForm(w, r, status, view, cats)
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, status int, view programform.View, categories []models.Category) {
	a.renderer.PageStatus(w, r, status, "program_form", &render.PageData{
		Title:   "Create Program",
		Section: "new-program",
		Data: map[string]any{
			"Form":       view,
			"Categories": categories,
		},
	})
}

// formValues reads the create-program fields. An empty or non-numeric
// duration is left unset and reported by validation.
func formValues(form url.Values) models.CreateProgramParams {
	p := models.CreateProgramParams{
		Title:       form.Get("title"),
		Description: form.Get("description"),
		CategoryID:  form.Get("categoryId"),
	}
	if raw := strings.TrimSpace(form.Get("durationDays")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.DurationDays = &n
		}
	}
	switch form.Get("isSelfPaced") {
	case "true", "on", "1":
		p.IsSelfPaced = true
	}
	return p
}

// ProgramDetail renders one program with its modules and content.
func (a *Admin) ProgramDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.notFound(w, r, "That program does not exist.")
		return
	}

	res := a.actions.GetProgramByID(r.Context(), id)
	if !res.Success {
		if res.Status == http.StatusNotFound {
			a.notFound(w, r, "That program does not exist.")
			return
		}
		a.fail(w, r, failed(res))
		return
	}
	detail := res.Data

	categoryName := programlist.UncategorizedLabel
	if detail.Category != nil && detail.Category.Name != "" {
		categoryName = detail.Category.Name
	}

	mediaURLs := map[string]string{}
	for _, m := range detail.Modules {
		for _, it := range m.ContentItems {
			if it.ContentType != models.ContentTypeVideo || it.Body() == "" {
				continue
			}
			u, err := a.mediaURL(r.Context(), it.Body())
			if err != nil {
				slog.WarnContext(r.Context(), "resolve video url", "item_id", it.ID, "error", err)
				continue
			}
			mediaURLs[it.ID.String()] = u
		}
	}

	a.renderer.Page(w, r, "program_detail", &render.PageData{
		Title:   detail.Title,
		Section: "programs",
		Data: map[string]any{
			"Program":      &detail,
			"CategoryName": categoryName,
			"MediaURLs":    mediaURLs,
		},
	})
}

func (a *Admin) mediaURL(ctx context.Context, ref string) (string, error) {
	if a.media == nil {
		if storage.IsAbsoluteURL(ref) {
			return ref, nil
		}
		return "", errors.New("media storage not configured")
	}
	return a.media.MediaURL(ctx, ref)
}

// ProgramToggle activates or deactivates a program. The "active" form
// value is the new state.
func (a *Admin) ProgramToggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	active, err := strconv.ParseBool(r.FormValue("active"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res := a.actions.SetProgramActive(r.Context(), id, active)
	if !res.Success {
		a.fail(w, r, failed(res))
		return
	}
	a.programsChanged(w, r, id, false)
}

// ProgramDelete removes a program.
func (a *Admin) ProgramDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	res := a.actions.DeleteProgram(r.Context(), id)
	if !res.Success {
		a.fail(w, r, failed(res))
		return
	}
	a.programsChanged(w, r, id, true)
}

// programsChanged answers a successful mutation. HTMX callers get an
// event that refreshes the list; on the program's own page a toggle
// refreshes it and a delete leaves it for the list.
func (a *Admin) programsChanged(w http.ResponseWriter, r *http.Request, id uuid.UUID, deleted bool) {
	detailPath := programform.ProgramsRoute + "/" + id.String()
	if !render.IsHTMX(r) {
		target := programform.ProgramsRoute
		if !deleted && strings.HasSuffix(r.Referer(), detailPath) {
			target = detailPath
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	onDetail := false
	if cur, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil {
		onDetail = cur.Path == detailPath
	}
	switch {
	case onDetail && deleted:
		w.Header().Set("HX-Redirect", programform.ProgramsRoute)
	case onDetail:
		w.Header().Set("HX-Refresh", "true")
	default:
		w.Header().Set("HX-Trigger", "programs-changed")
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail answers a failed action on an HTML route. Authentication failures
// go back to the login page.
func (a *Admin) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := result.MsgUnexpected
	var rerr *resultError
	if errors.As(err, &rerr) {
		if rerr.status != 0 {
			status = rerr.status
		}
		msg = rerr.Error()
	} else {
		slog.ErrorContext(r.Context(), "admin handler failed", "error", err)
	}

	switch status {
	case http.StatusUnauthorized:
		if render.IsHTMX(r) {
			w.Header().Set("HX-Redirect", middleware.LoginPath)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	case http.StatusNotFound:
		a.notFound(w, r, msg)
	default:
		if render.IsHTMX(r) {
			w.Header().Set("HX-Reswap", "none")
			http.Error(w, msg, status)
			return
		}
		a.renderer.PageStatus(w, r, status, "not_found", &render.PageData{
			Title: http.StatusText(status),
			Data:  map[string]any{"Message": msg},
		})
	}
}

func (a *Admin) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	a.renderer.PageStatus(w, r, http.StatusNotFound, "not_found", &render.PageData{
		Title: "Not Found",
		Data:  map[string]any{"Message": msg},
	})
}
