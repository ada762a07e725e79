// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType distinguishes the kinds of items a learning module holds.
type ContentType string

const (
	ContentTypeVideo      ContentType = "video"
	ContentTypeText       ContentType = "text"
	ContentTypeAssessment ContentType = "assessment"
)

// LearningModule is one ordered step of a treatment program.
type LearningModule struct {
	ID               uuid.UUID `json:"id"`
	ProgramID        uuid.UUID `json:"program_id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	SequenceNumber   int       `json:"sequence_number"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	IsRequired       bool      `json:"is_required"`
	CreatedBy        uuid.UUID `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	ContentItems []ContentItem `json:"content_items"`
}

// ContentItem is a single piece of module content: a video, a text lesson
// or an assessment.
type ContentItem struct {
	ID             uuid.UUID   `json:"id"`
	ModuleID       uuid.UUID   `json:"module_id"`
	Title          string      `json:"title"`
	ContentType    ContentType `json:"content_type"`
	Content        *string     `json:"content,omitempty"`
	SequenceNumber int         `json:"sequence_number"`
	CreatedBy      uuid.UUID   `json:"created_by"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// Populated for assessment items when an assessment row exists.
	Assessment *Assessment `json:"assessment,omitempty"`
}

// Body returns the item content or "" when none is stored.
func (c *ContentItem) Body() string {
	if c.Content == nil {
		return ""
	}
	return *c.Content
}

// Assessment is a scored quiz attached to an assessment content item.
type Assessment struct {
	ID               uuid.UUID `json:"id"`
	ContentItemID    uuid.UUID `json:"content_item_id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	PassingScore     int       `json:"passing_score"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	CreatedBy        uuid.UUID `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	QuestionCount int `json:"question_count"`
}
