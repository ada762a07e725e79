// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package actions

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"carepath/internal/models"
	"carepath/internal/result"
)

// memStore is an in-memory implementation of every store interface.
type memStore struct {
	mu          sync.Mutex
	categories  []models.Category
	programs    []models.Program
	modules     map[uuid.UUID][]models.LearningModule
	assessments map[uuid.UUID]models.Assessment
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		modules:     map[uuid.UUID][]models.LearningModule{},
		assessments: map[uuid.UUID]models.Assessment{},
	}
}

func (m *memStore) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := slices.Clone(m.categories)
	slices.SortFunc(out, func(a, b models.Category) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

type memPrograms struct{ *memStore }

func (m memPrograms) List(context.Context) ([]models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := slices.Clone(m.programs)
	slices.SortStableFunc(out, func(a, b models.Program) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m memPrograms) FindByID(_ context.Context, id uuid.UUID) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, p := range m.programs {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m memPrograms) Create(_ context.Context, params models.CreateProgramParams, createdBy uuid.UUID) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	p := models.Program{
		ID:           uuid.New(),
		Title:        params.Title,
		Description:  params.Description,
		DurationDays: params.DurationDays,
		IsSelfPaced:  params.IsSelfPaced,
		CreatedBy:    createdBy,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if params.CategoryID != "" {
		id := uuid.MustParse(params.CategoryID)
		p.CategoryID = &id
	}
	m.programs = append(m.programs, p)
	return &p, nil
}

func (m memPrograms) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.programs {
		if m.programs[i].ID == id {
			m.programs[i].IsActive = active
			return nil
		}
	}
	return result.ErrNotFound
}

func (m memPrograms) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.programs {
		if m.programs[i].ID == id {
			m.programs = slices.Delete(m.programs, i, i+1)
			return nil
		}
	}
	return result.ErrNotFound
}

func (m *memStore) ListByProgram(_ context.Context, programID uuid.UUID) ([]models.LearningModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.modules[programID]), nil
}

func (m *memStore) ListByContentItems(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]models.Assessment{}
	for _, id := range ids {
		if a, ok := m.assessments[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type recordingInvalidator struct {
	mu     sync.Mutex
	routes []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, route string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	return nil
}
