// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package actions exposes the admin program operations. Every operation
// checks the caller's session, talks to the stores and folds the outcome
// into a result.Result so handlers never see raw internal errors.
package actions

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"carepath/internal/models"
	"carepath/internal/result"
	"carepath/internal/schema"
	"carepath/internal/session"
	"carepath/internal/store"
)

// ProgramsRoute is the page whose cached data changes when programs do.
const ProgramsRoute = "/admin/programs"

// CategoryStore reads program categories.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// ProgramStore reads and writes treatment programs.
type ProgramStore interface {
	List(ctx context.Context) ([]models.Program, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	Create(ctx context.Context, params models.CreateProgramParams, createdBy uuid.UUID) (*models.Program, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ModuleStore reads a program's modules with their content items.
type ModuleStore interface {
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.LearningModule, error)
}

// AssessmentStore reads assessments for content items.
type AssessmentStore interface {
	ListByContentItems(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]models.Assessment, error)
}

// Invalidator drops cached data for a route.
type Invalidator interface {
	Invalidate(ctx context.Context, route string) error
}

// Programs implements the admin program actions.
type Programs struct {
	categories  CategoryStore
	programs    ProgramStore
	modules     ModuleStore
	assessments AssessmentStore
	invalidator Invalidator
}

// NewPrograms wires the actions to their stores. invalidator may be nil.
func NewPrograms(categories CategoryStore, programs ProgramStore, modules ModuleStore, assessments AssessmentStore, invalidator Invalidator) *Programs {
	return &Programs{
		categories:  categories,
		programs:    programs,
		modules:     modules,
		assessments: assessments,
		invalidator: invalidator,
	}
}

// RequireAdmin is the authorization gate. It returns the caller's session
// when the caller is a signed-in admin who completed 2FA.
func RequireAdmin(ctx context.Context) (*session.Data, error) {
	sess := session.FromContext(ctx)
	if sess == nil || !sess.TwoFADone {
		return nil, &result.AuthorizationError{Reason: result.Unauthenticated}
	}
	if sess.Role != string(models.RoleAdmin) {
		return nil, &result.AuthorizationError{Reason: result.Forbidden}
	}
	return sess, nil
}

// GetCategories lists all categories ordered by name.
func (a *Programs) GetCategories(ctx context.Context) result.Result[[]models.Category] {
	if _, err := RequireAdmin(ctx); err != nil {
		return result.Fail[[]models.Category](err)
	}
	items, err := a.categories.List(ctx)
	if err != nil {
		return result.Fail[[]models.Category](err)
	}
	return result.OK(items)
}

// GetPrograms lists all programs with their category, newest first.
func (a *Programs) GetPrograms(ctx context.Context) result.Result[[]models.Program] {
	if _, err := RequireAdmin(ctx); err != nil {
		return result.Fail[[]models.Program](err)
	}
	items, err := a.programs.List(ctx)
	if err != nil {
		return result.Fail[[]models.Program](err)
	}
	return result.OK(items)
}

// GetProgramByID returns a program with its category, ordered modules,
// their content items and any assessments attached to those items.
func (a *Programs) GetProgramByID(ctx context.Context, id uuid.UUID) result.Result[models.ProgramDetail] {
	if _, err := RequireAdmin(ctx); err != nil {
		return result.Fail[models.ProgramDetail](err)
	}

	p, err := a.programs.FindByID(ctx, id)
	if err != nil {
		return result.Fail[models.ProgramDetail](err)
	}
	if p == nil {
		return result.Fail[models.ProgramDetail](result.ErrNotFound)
	}

	modules, err := a.modules.ListByProgram(ctx, id)
	if err != nil {
		return result.Fail[models.ProgramDetail](err)
	}

	var quizItems []uuid.UUID
	for _, m := range modules {
		for _, it := range m.ContentItems {
			if it.ContentType == models.ContentTypeAssessment {
				quizItems = append(quizItems, it.ID)
			}
		}
	}
	if len(quizItems) > 0 {
		byItem, err := a.assessments.ListByContentItems(ctx, quizItems)
		if err != nil {
			return result.Fail[models.ProgramDetail](err)
		}
		for mi := range modules {
			for ii := range modules[mi].ContentItems {
				it := &modules[mi].ContentItems[ii]
				if as, ok := byItem[it.ID]; ok {
					it.Assessment = &as
				}
			}
		}
	}

	return result.OK(models.ProgramDetail{Program: *p, Modules: modules})
}

// CreateProgram validates params, checks the caller is an admin and
// inserts the program owned by them. On success the programs route is
// invalidated.
func (a *Programs) CreateProgram(ctx context.Context, params models.CreateProgramParams) result.Result[models.Program] {
	params, err := schema.CreateProgram(params)
	if err != nil {
		return result.Fail[models.Program](err)
	}

	sess, err := RequireAdmin(ctx)
	if err != nil {
		return result.Fail[models.Program](err)
	}

	if params.CategoryID != "" {
		if verr := a.checkCategory(ctx, params.CategoryID); verr != nil {
			return result.Fail[models.Program](verr)
		}
	}

	p, err := a.programs.Create(ctx, params, sess.UserID)
	if err != nil {
		if store.IsCode(err, store.CodeForeignKeyViolation) {
			return result.Fail[models.Program](categoryMissing())
		}
		return result.Fail[models.Program](err)
	}

	slog.Info("program created", "id", p.ID, "title", p.Title, "by", sess.Email)
	a.invalidate(ctx)
	return result.OK(*p)
}

// SetProgramActive activates or deactivates a program.
func (a *Programs) SetProgramActive(ctx context.Context, id uuid.UUID, active bool) result.Result[bool] {
	sess, err := RequireAdmin(ctx)
	if err != nil {
		return result.Fail[bool](err)
	}
	if err := a.programs.SetActive(ctx, id, active); err != nil {
		return result.Fail[bool](err)
	}

	slog.Info("program status changed", "id", id, "active", active, "by", sess.Email)
	a.invalidate(ctx)
	return result.OK(active)
}

// DeleteProgram removes a program with its modules and content.
func (a *Programs) DeleteProgram(ctx context.Context, id uuid.UUID) result.Result[uuid.UUID] {
	sess, err := RequireAdmin(ctx)
	if err != nil {
		return result.Fail[uuid.UUID](err)
	}
	if err := a.programs.Delete(ctx, id); err != nil {
		return result.Fail[uuid.UUID](err)
	}

	slog.Info("program deleted", "id", id, "by", sess.Email)
	a.invalidate(ctx)
	return result.OK(id)
}

// checkCategory returns a validation error when the category does not
// exist. Lookup failures other than "missing" are returned as is.
func (a *Programs) checkCategory(ctx context.Context, raw string) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return categoryMissing()
	}
	c, err := a.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return categoryMissing()
	}
	return nil
}

func categoryMissing() error {
	verr := result.NewValidationError()
	verr.Add("categoryId", "Category does not exist.")
	return verr
}

// invalidate signals that the programs page is stale. Failures are logged;
// the write already succeeded.
func (a *Programs) invalidate(ctx context.Context) {
	if a.invalidator == nil {
		return
	}
	if err := a.invalidator.Invalidate(ctx, ProgramsRoute); err != nil {
		slog.Warn("invalidate route", "route", ProgramsRoute, "error", err)
	}
}
