// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SelfPacedLabel is shown instead of a day count for self-paced programs.
const SelfPacedLabel = "Self-paced"

// Program is a structured treatment course assigned to patients.
//
// IsSelfPaced and DurationDays are not mutually exclusive in storage. When a
// program is self-paced its duration is ignored for display.
type Program struct {
	ID           uuid.UUID  `json:"id"`
	CategoryID   *uuid.UUID `json:"category_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DurationDays *int       `json:"duration_days"`
	IsSelfPaced  bool       `json:"is_self_paced"`
	CreatedBy    uuid.UUID  `json:"created_by"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Virtual field populated by listing queries (LEFT JOIN on categories).
	Category *CategoryRef `json:"category,omitempty"`
}

// DurationLabel returns the badge text for the program: "Self-paced" or
// "N days". Create rejects a fixed-length program without a duration, so a
// row with neither only comes from direct database edits; it is shown as
// "Self-paced" rather than an empty badge.
func (p *Program) DurationLabel() string {
	if p.IsSelfPaced || p.DurationDays == nil {
		return SelfPacedLabel
	}
	if *p.DurationDays == 1 {
		return "1 day"
	}
	return strconv.Itoa(*p.DurationDays) + " days"
}

// Duration returns duration_days, treating a missing value as zero.
func (p *Program) Duration() int {
	if p.DurationDays == nil {
		return 0
	}
	return *p.DurationDays
}

// CategoryKey returns the category ID as a string, or "" when the program
// is uncategorized. Used for comparisons against filter values.
func (p *Program) CategoryKey() string {
	if p.CategoryID == nil {
		return ""
	}
	return p.CategoryID.String()
}

// CreateProgramParams is a transient create-program request. It exists only
// for one submission attempt and is validated before it reaches the store.
type CreateProgramParams struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	CategoryID   string `json:"categoryId" validate:"omitempty,uuid"`
	DurationDays *int   `json:"durationDays" validate:"omitempty,min=1,max=365"`
	IsSelfPaced  bool   `json:"isSelfPaced"`
}

// ProgramDetail is a program together with its ordered modules.
type ProgramDetail struct {
	Program
	Modules []LearningModule `json:"modules"`
}

// ContentCount returns the number of content items across all modules.
func (d *ProgramDetail) ContentCount() int {
	n := 0
	for _, m := range d.Modules {
		n += len(m.ContentItems)
	}
	return n
}
