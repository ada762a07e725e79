// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"carepath/internal/models"
)

// ModuleStore reads learning modules and their content items.
type ModuleStore struct {
	db DBTX
}

// NewModuleStore returns a new ModuleStore.
func NewModuleStore(db DBTX) *ModuleStore {
	return &ModuleStore{db: db}
}

// ListByProgram returns a program's modules ordered by sequence number,
// each with its content items in sequence order.
func (s *ModuleStore) ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.LearningModule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_id, title, description, sequence_number, estimated_minutes,
		       is_required, created_by, created_at, updated_at
		FROM learning_modules
		WHERE program_id = $1
		ORDER BY sequence_number
	`, programID)
	if err != nil {
		return nil, backendError("list modules", err)
	}
	defer rows.Close()

	modules := []models.LearningModule{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			m       models.LearningModule
			minutes sql.NullInt32
		)
		if err := rows.Scan(
			&m.ID, &m.ProgramID, &m.Title, &m.Description, &m.SequenceNumber, &minutes,
			&m.IsRequired, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, backendError("scan module", err)
		}
		if minutes.Valid {
			n := int(minutes.Int32)
			m.EstimatedMinutes = &n
		}
		m.ContentItems = []models.ContentItem{}
		index[m.ID] = len(modules)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("list modules", err)
	}
	if len(modules) == 0 {
		return modules, nil
	}

	items, err := s.listItems(ctx, programID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.ModuleID]; ok {
			modules[i].ContentItems = append(modules[i].ContentItems, it)
		}
	}
	return modules, nil
}

// listItems returns every content item of a program, ordered by module then
// item sequence.
func (s *ModuleStore) listItems(ctx context.Context, programID uuid.UUID) ([]models.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.id, ci.module_id, ci.title, ci.content_type, ci.content,
		       ci.sequence_number, ci.created_by, ci.created_at, ci.updated_at
		FROM content_items ci
		JOIN learning_modules m ON m.id = ci.module_id
		WHERE m.program_id = $1
		ORDER BY m.sequence_number, ci.sequence_number
	`, programID)
	if err != nil {
		return nil, backendError("list content items", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var it models.ContentItem
		if err := rows.Scan(
			&it.ID, &it.ModuleID, &it.Title, &it.ContentType, &it.Content,
			&it.SequenceNumber, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, backendError("scan content item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("list content items", err)
	}
	return items, nil
}

// Create inserts a module at the end of a program's sequence.
func (s *ModuleStore) Create(ctx context.Context, programID uuid.UUID, title string, createdBy uuid.UUID) (*models.LearningModule, error) {
	m := &models.LearningModule{ContentItems: []models.ContentItem{}}
	var minutes sql.NullInt32
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO learning_modules (program_id, title, sequence_number, created_by)
		VALUES ($1, $2, COALESCE((SELECT MAX(sequence_number) FROM learning_modules WHERE program_id = $1), 0) + 1, $3)
		RETURNING id, program_id, title, description, sequence_number, estimated_minutes,
		          is_required, created_by, created_at, updated_at
	`, programID, title, createdBy).Scan(
		&m.ID, &m.ProgramID, &m.Title, &m.Description, &m.SequenceNumber, &minutes,
		&m.IsRequired, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, backendError("create module", err)
	}
	if minutes.Valid {
		n := int(minutes.Int32)
		m.EstimatedMinutes = &n
	}
	return m, nil
}

// AddContentItem appends a content item to a module.
func (s *ModuleStore) AddContentItem(ctx context.Context, moduleID uuid.UUID, title string, kind models.ContentType, content *string, createdBy uuid.UUID) (*models.ContentItem, error) {
	it := &models.ContentItem{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO content_items (module_id, title, content_type, content, sequence_number, created_by)
		VALUES ($1, $2, $3, $4, COALESCE((SELECT MAX(sequence_number) FROM content_items WHERE module_id = $1), 0) + 1, $5)
		RETURNING id, module_id, title, content_type, content, sequence_number, created_by, created_at, updated_at
	`, moduleID, title, kind, content, createdBy).Scan(
		&it.ID, &it.ModuleID, &it.Title, &it.ContentType, &it.Content,
		&it.SequenceNumber, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, backendError("add content item", err)
	}
	return it, nil
}
