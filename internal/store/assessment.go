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

// AssessmentStore reads assessments attached to content items.
type AssessmentStore struct {
	db DBTX
}

// NewAssessmentStore returns a new AssessmentStore.
func NewAssessmentStore(db DBTX) *AssessmentStore {
	return &AssessmentStore{db: db}
}

// ListByContentItems returns the assessments for the given content items,
// keyed by content item ID, each with its question count.
func (s *AssessmentStore) ListByContentItems(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]models.Assessment, error) {
	out := make(map[uuid.UUID]models.Assessment, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.content_item_id, a.title, a.description, a.passing_score,
		       a.time_limit_minutes, a.created_by, a.created_at, a.updated_at,
		       COUNT(q.id) AS question_count
		FROM assessments a
		LEFT JOIN assessment_questions q ON q.assessment_id = a.id
		WHERE a.content_item_id = ANY($1::uuid[])
		GROUP BY a.id
	`, ids)
	if err != nil {
		return nil, backendError("list assessments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a     models.Assessment
			limit sql.NullInt32
		)
		if err := rows.Scan(
			&a.ID, &a.ContentItemID, &a.Title, &a.Description, &a.PassingScore,
			&limit, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
			&a.QuestionCount,
		); err != nil {
			return nil, backendError("scan assessment", err)
		}
		if limit.Valid {
			n := int(limit.Int32)
			a.TimeLimitMinutes = &n
		}
		out[a.ContentItemID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("list assessments", err)
	}
	return out, nil
}

// Create attaches an assessment to a content item.
func (s *AssessmentStore) Create(ctx context.Context, itemID uuid.UUID, title string, passingScore int, createdBy uuid.UUID) (*models.Assessment, error) {
	a := &models.Assessment{}
	var limit sql.NullInt32
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assessments (content_item_id, title, passing_score, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content_item_id, title, description, passing_score,
		          time_limit_minutes, created_by, created_at, updated_at
	`, itemID, title, passingScore, createdBy).Scan(
		&a.ID, &a.ContentItemID, &a.Title, &a.Description, &a.PassingScore,
		&limit, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, backendError("create assessment", err)
	}
	if limit.Valid {
		n := int(limit.Int32)
		a.TimeLimitMinutes = &n
	}
	return a, nil
}

// AddQuestion appends a question to an assessment.
func (s *AssessmentStore) AddQuestion(ctx context.Context, assessmentID uuid.UUID, text string, points int) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assessment_questions (assessment_id, question_text, question_type, points, sequence_number)
		VALUES ($1, $2, 'multiple_choice', $3,
		        COALESCE((SELECT MAX(sequence_number) FROM assessment_questions WHERE assessment_id = $1), 0) + 1)
		RETURNING id
	`, assessmentID, text, points).Scan(&id)
	if err != nil {
		return uuid.Nil, backendError("add assessment question", err)
	}
	return id, nil
}
