package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"carepath/internal/models"
)

// Default development credentials created by Seed.
const (
	SeedAdminEmail    = "admin@carepath.local"
	SeedAdminPassword = "admin"
)

var seedCategories = []struct{ name, description string }{
	{"Anxiety", "Programs for managing worry, panic and generalized anxiety."},
	{"Depression", "Behavioural activation and mood tracking programs."},
	{"Sleep", "Sleep hygiene and insomnia programs."},
	{"Stress", "Stress reduction and resilience programs."},
}

type seedModule struct {
	title string
	items []seedItem
}

type seedItem struct {
	title   string
	kind    models.ContentType
	content string
}

var seedPrograms = []struct {
	title, description, category string
	days                         *int
	selfPaced, active            bool
	modules                      []seedModule
}{
	{
		title:       "Anxiety Basics",
		description: "A four-week introduction to recognising and managing anxiety.",
		category:    "Anxiety",
		days:        intPtr(30),
		active:      true,
		modules: []seedModule{
			{title: "Understanding anxiety", items: []seedItem{
				{"What anxiety is", models.ContentTypeText, "## What is anxiety?\n\nAnxiety is the body's **alarm system**."},
				{"Welcome video", models.ContentTypeVideo, "videos/anxiety-basics/welcome.mp4"},
			}},
			{title: "Breathing techniques", items: []seedItem{
				{"Box breathing", models.ContentTypeText, "Breathe in for four counts, hold for four, out for four."},
				{"Week one check-in", models.ContentTypeAssessment, ""},
			}},
		},
	},
	{
		title:       "Sleep Reset",
		description: "Two weeks of structured sleep restriction and hygiene.",
		category:    "Sleep",
		days:        intPtr(14),
		active:      false,
		modules: []seedModule{
			{title: "Sleep diary", items: []seedItem{
				{"Keeping a diary", models.ContentTypeText, "Record bedtime, wake time and how rested you feel."},
			}},
		},
	},
	{
		title:       "Mindful Moments",
		description: "Short guided mindfulness practices to use at your own pace.",
		category:    "Stress",
		selfPaced:   true,
		active:      true,
	},
}

var seedQuestions = []string{
	"How often did you feel anxious this week?",
	"Did you practise box breathing at least three times?",
}

func intPtr(n int) *int { return &n }

// Seed populates the database with development data through the stores.
// It creates the default admin and starter categories if missing, then the
// starter programs in one transaction when the catalogue is empty. The admin
// is prompted to set up 2FA on first login.
func Seed(ctx context.Context, db *sql.DB) error {
	admin, err := seedAdmin(ctx, NewUserStore(db))
	if err != nil {
		return err
	}

	categoryIDs, err := seedCategoryIDs(ctx, NewCategoryStore(db))
	if err != nil {
		return err
	}

	existing, err := NewProgramStore(db).List(ctx)
	if err != nil {
		return fmt.Errorf("seed check programs: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("program catalogue already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	programs := NewProgramStore(tx)
	for _, sp := range seedPrograms {
		p, err := programs.Create(ctx, models.CreateProgramParams{
			Title:        sp.title,
			Description:  sp.description,
			CategoryID:   categoryIDs[sp.category].String(),
			DurationDays: sp.days,
			IsSelfPaced:  sp.selfPaced,
		}, admin.ID)
		if err != nil {
			return fmt.Errorf("seed program %s: %w", sp.title, err)
		}
		if !sp.active {
			if err := programs.SetActive(ctx, p.ID, false); err != nil {
				return fmt.Errorf("seed program %s: %w", sp.title, err)
			}
		}
		if err := seedProgramModules(ctx, tx, p.ID, admin.ID, sp.modules); err != nil {
			return fmt.Errorf("seed program %s: %w", sp.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with starter programs",
		"categories", len(seedCategories),
		"programs", len(seedPrograms),
	)
	return nil
}

// seedAdmin returns the default admin, creating it when missing.
func seedAdmin(ctx context.Context, users *UserStore) (*models.User, error) {
	u, err := users.FindByEmail(ctx, SeedAdminEmail)
	if err != nil {
		return nil, fmt.Errorf("seed check admin: %w", err)
	}
	if u != nil {
		return u, nil
	}

	u, err = users.Create(ctx, SeedAdminEmail, SeedAdminPassword, "Admin", models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seed create admin: %w", err)
	}
	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", SeedAdminPassword,
	)
	return u, nil
}

// seedCategoryIDs creates the starter categories that do not exist yet and
// returns every starter category ID by name.
func seedCategoryIDs(ctx context.Context, categories *CategoryStore) (map[string]uuid.UUID, error) {
	existing, err := categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed list categories: %w", err)
	}
	ids := make(map[string]uuid.UUID, len(seedCategories))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for _, c := range seedCategories {
		if _, ok := ids[c.name]; ok {
			continue
		}
		created, err := categories.Create(ctx, c.name, c.description)
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", c.name, err)
		}
		ids[c.name] = created.ID
	}
	return ids, nil
}

func seedProgramModules(ctx context.Context, tx DBTX, programID, adminID uuid.UUID, modules []seedModule) error {
	mods := NewModuleStore(tx)
	assessments := NewAssessmentStore(tx)

	for _, sm := range modules {
		m, err := mods.Create(ctx, programID, sm.title, adminID)
		if err != nil {
			return fmt.Errorf("module %s: %w", sm.title, err)
		}

		for _, it := range sm.items {
			var content *string
			if it.content != "" {
				content = &it.content
			}
			item, err := mods.AddContentItem(ctx, m.ID, it.title, it.kind, content, adminID)
			if err != nil {
				return fmt.Errorf("content item %s: %w", it.title, err)
			}
			if it.kind != models.ContentTypeAssessment {
				continue
			}

			a, err := assessments.Create(ctx, item.ID, it.title, 70, adminID)
			if err != nil {
				return fmt.Errorf("assessment %s: %w", it.title, err)
			}
			for _, q := range seedQuestions {
				if _, err := assessments.AddQuestion(ctx, a.ID, q, 1); err != nil {
					return fmt.Errorf("assessment question: %w", err)
				}
			}
		}
	}
	return nil
}
