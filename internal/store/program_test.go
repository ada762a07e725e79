// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"carepath/internal/models"
	"carepath/internal/result"
)

func TestCategoryStoreListOrderedByName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()
	t.Cleanup(func() { cleanCategories(t, db, "zz-test-last", "aa-test-first") })

	if _, err := s.Create(ctx, "zz-test-last", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := s.Create(ctx, "aa-test-first", "first")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	posFirst, posLast := -1, -1
	for i, c := range list {
		switch c.Name {
		case "aa-test-first":
			posFirst = i
		case "zz-test-last":
			posLast = i
		}
	}
	if posFirst < 0 || posLast < 0 || posFirst > posLast {
		t.Errorf("categories not ordered by name: first=%d last=%d", posFirst, posLast)
	}

	found, err := s.FindByID(ctx, first.ID)
	if err != nil || found == nil || found.Description != "first" {
		t.Errorf("FindByID = %+v, %v", found, err)
	}
}

func TestProgramStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	cats := NewCategoryStore(db)
	s := NewProgramStore(db)
	ctx := context.Background()

	admin := testAdmin(t, users, "test-program-create@store-test.local")
	t.Cleanup(func() {
		cleanPrograms(t, db, "Store Test Program", "Store Test Self-paced")
		cleanCategories(t, db, "store-test-category")
	})

	cat, err := cats.Create(ctx, "store-test-category", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	days := 21
	p, err := s.Create(ctx, models.CreateProgramParams{
		Title:        "Store Test Program",
		Description:  "desc",
		CategoryID:   cat.ID.String(),
		DurationDays: &days,
	}, admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if !p.IsActive {
		t.Error("new programs should be active")
	}
	if p.Category == nil || p.Category.Name != "store-test-category" {
		t.Errorf("category join missing: %+v", p.Category)
	}
	if p.DurationDays == nil || *p.DurationDays != 21 {
		t.Errorf("duration: got %v", p.DurationDays)
	}
	if p.CreatedBy != admin.ID {
		t.Errorf("created_by: got %s, want %s", p.CreatedBy, admin.ID)
	}

	sp, err := s.Create(ctx, models.CreateProgramParams{Title: "Store Test Self-paced", IsSelfPaced: true}, admin.ID)
	if err != nil {
		t.Fatalf("Create self-paced: %v", err)
	}
	if sp.CategoryID != nil || sp.Category != nil || sp.DurationDays != nil {
		t.Errorf("expected uncategorized self-paced program, got %+v", sp)
	}

	found, err := s.FindByID(ctx, p.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID: %v, %v", found, err)
	}
	if found.Title != "Store Test Program" {
		t.Errorf("title: got %q", found.Title)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatalf("List not ordered newest first at %d", i)
		}
	}
}

func TestProgramStoreUnknownCategory(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewProgramStore(db)
	admin := testAdmin(t, users, "test-program-fk@store-test.local")
	t.Cleanup(func() { cleanPrograms(t, db, "Store Test FK") })

	days := 7
	_, err := s.Create(context.Background(), models.CreateProgramParams{
		Title: "Store Test FK", CategoryID: uuid.NewString(), DurationDays: &days,
	}, admin.ID)
	if !IsCode(err, CodeForeignKeyViolation) {
		t.Errorf("expected FK violation, got %v", err)
	}
	var be *result.BackendError
	if !errors.As(err, &be) {
		t.Errorf("expected *result.BackendError, got %T", err)
	}
}

func TestProgramStoreSetActiveAndDelete(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewProgramStore(db)
	ctx := context.Background()
	admin := testAdmin(t, users, "test-program-toggle@store-test.local")
	t.Cleanup(func() { cleanPrograms(t, db, "Store Test Toggle") })

	p, err := s.Create(ctx, models.CreateProgramParams{Title: "Store Test Toggle", IsSelfPaced: true}, admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetActive(ctx, p.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, _ := s.FindByID(ctx, p.ID)
	if got.IsActive {
		t.Error("expected inactive after SetActive(false)")
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindByID(ctx, p.ID); got != nil {
		t.Error("expected nil after delete")
	}

	if err := s.Delete(ctx, p.ID); !errors.Is(err, result.ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	if err := s.SetActive(ctx, uuid.New(), true); !errors.Is(err, result.ErrNotFound) {
		t.Errorf("SetActive(random): got %v, want ErrNotFound", err)
	}
}

func TestModuleAndAssessmentStores(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	programs := NewProgramStore(db)
	modules := NewModuleStore(db)
	assessments := NewAssessmentStore(db)
	ctx := context.Background()

	admin := testAdmin(t, users, "test-modules@store-test.local")
	t.Cleanup(func() { cleanPrograms(t, db, "Store Test Modules") })

	p, err := programs.Create(ctx, models.CreateProgramParams{Title: "Store Test Modules", IsSelfPaced: true}, admin.ID)
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	empty, err := modules.ListByProgram(ctx, p.ID)
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListByProgram(empty) = %v, %v", empty, err)
	}

	m1, err := modules.Create(ctx, p.ID, "Week 1", admin.ID)
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	m2, err := modules.Create(ctx, p.ID, "Week 2", admin.ID)
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	if m2.SequenceNumber != m1.SequenceNumber+1 {
		t.Errorf("sequence: got %d after %d", m2.SequenceNumber, m1.SequenceNumber)
	}

	body := "Breathe in for four counts."
	if _, err := modules.AddContentItem(ctx, m1.ID, "Breathing", models.ContentTypeText, &body, admin.ID); err != nil {
		t.Fatalf("add text item: %v", err)
	}
	quiz, err := modules.AddContentItem(ctx, m2.ID, "Check-in", models.ContentTypeAssessment, nil, admin.ID)
	if err != nil {
		t.Fatalf("add assessment item: %v", err)
	}
	a, err := assessments.Create(ctx, quiz.ID, "Check-in quiz", 70, admin.ID)
	if err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	for _, q := range []string{"How did you sleep?", "Rate your stress."} {
		if _, err := assessments.AddQuestion(ctx, a.ID, q, 1); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}

	list, err := modules.ListByProgram(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByProgram: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Week 1" || list[1].Title != "Week 2" {
		t.Fatalf("modules out of order: %+v", list)
	}
	if len(list[0].ContentItems) != 1 || list[0].ContentItems[0].Body() != body {
		t.Errorf("week 1 items: %+v", list[0].ContentItems)
	}

	byItem, err := assessments.ListByContentItems(ctx, []uuid.UUID{quiz.ID, uuid.New()})
	if err != nil {
		t.Fatalf("ListByContentItems: %v", err)
	}
	got, ok := byItem[quiz.ID]
	if !ok {
		t.Fatal("assessment missing for quiz item")
	}
	if got.QuestionCount != 2 || got.PassingScore != 70 {
		t.Errorf("assessment: %+v", got)
	}
}

func TestCategoryDeleteLeavesProgramUncategorized(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	cats := NewCategoryStore(db)
	s := NewProgramStore(db)
	ctx := context.Background()

	admin := testAdmin(t, users, "test-category-delete@store-test.local")
	t.Cleanup(func() {
		cleanPrograms(t, db, "Store Test Orphan")
		cleanCategories(t, db, "store-test-doomed")
	})

	cat, err := cats.Create(ctx, "store-test-doomed", "")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	p, err := s.Create(ctx, models.CreateProgramParams{Title: "Store Test Orphan", CategoryID: cat.ID.String(), IsSelfPaced: true}, admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM program_categories WHERE id = $1`, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := s.FindByID(ctx, p.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID = %v, %v", got, err)
	}
	if got.CategoryID != nil || got.Category != nil {
		t.Errorf("program should be uncategorized, got %v / %+v", got.CategoryID, got.Category)
	}
}
