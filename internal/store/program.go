// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"carepath/internal/models"
	"carepath/internal/result"
)

// ProgramStore manages treatment programs in the database.
type ProgramStore struct {
	db DBTX
}

// NewProgramStore returns a new ProgramStore.
func NewProgramStore(db DBTX) *ProgramStore {
	return &ProgramStore{db: db}
}

// programSelect reads a program joined with its category from a relation
// aliased p.
const programSelect = `
	SELECT p.id, p.category_id, p.title, p.description, p.duration_days,
	       p.is_self_paced, p.created_by, p.is_active, p.created_at, p.updated_at,
	       c.id, c.name`

const programFrom = ` LEFT JOIN program_categories c ON c.id = p.category_id`

// scanProgram scans a joined program row. The category reference is nil
// when the program has no category.
func scanProgram(scanner interface{ Scan(...any) error }) (*models.Program, error) {
	var (
		p       models.Program
		desc    sql.NullString
		days    sql.NullInt32
		catID   uuid.NullUUID
		catName sql.NullString
		refID   uuid.NullUUID
	)
	err := scanner.Scan(
		&p.ID, &catID, &p.Title, &desc, &days,
		&p.IsSelfPaced, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&refID, &catName,
	)
	if err != nil {
		return nil, err
	}

	p.Description = desc.String
	if days.Valid {
		d := int(days.Int32)
		p.DurationDays = &d
	}
	if catID.Valid {
		id := catID.UUID
		p.CategoryID = &id
	}
	if refID.Valid {
		p.Category = &models.CategoryRef{ID: refID.UUID, Name: catName.String}
	}
	return &p, nil
}

// List returns all programs with their category, newest first.
func (s *ProgramStore) List(ctx context.Context) ([]models.Program, error) {
	rows, err := s.db.QueryContext(ctx, programSelect+`
		FROM treatment_programs p`+programFrom+`
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, backendError("list programs", err)
	}
	defer rows.Close()

	items := []models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, backendError("scan program", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("list programs", err)
	}
	return items, nil
}

// FindByID retrieves a program with its category. Returns nil if not found.
func (s *ProgramStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	row := s.db.QueryRowContext(ctx, programSelect+`
		FROM treatment_programs p`+programFrom+`
		WHERE p.id = $1`, id)
	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backendError("find program by id", err)
	}
	return p, nil
}

// Create inserts a program owned by createdBy and returns it with its
// category joined. The params are expected to be validated already.
func (s *ProgramStore) Create(ctx context.Context, params models.CreateProgramParams, createdBy uuid.UUID) (*models.Program, error) {
	var categoryID *uuid.UUID
	if params.CategoryID != "" {
		id, err := uuid.Parse(params.CategoryID)
		if err != nil {
			return nil, backendError("create program", err)
		}
		categoryID = &id
	}

	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO treatment_programs (category_id, title, description, duration_days, is_self_paced, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)`+programSelect+`
		FROM p`+programFrom,
		categoryID, params.Title, params.Description, params.DurationDays, params.IsSelfPaced, createdBy,
	)
	p, err := scanProgram(row)
	if err != nil {
		return nil, backendError("create program", err)
	}
	return p, nil
}

// SetActive toggles whether a program is offered to patients.
func (s *ProgramStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE treatment_programs SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return backendError("set program active", err)
	}
	return requireRow(res, "set program active")
}

// Delete removes a program and, by cascade, its modules and content.
func (s *ProgramStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM treatment_programs WHERE id = $1`, id)
	if err != nil {
		return backendError("delete program", err)
	}
	return requireRow(res, "delete program")
}

// requireRow maps zero affected rows to result.ErrNotFound.
func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return backendError(op, err)
	}
	if n == 0 {
		return result.ErrNotFound
	}
	return nil
}
