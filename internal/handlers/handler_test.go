// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure: in-memory fakes for
// the program actions and auth stores, plus helpers for integration tests
// that are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"carepath/internal/actions"
	"carepath/internal/database"
	"carepath/internal/models"
	"carepath/internal/render"
	"carepath/internal/result"
	"carepath/internal/schema"
	"carepath/internal/session"
	"carepath/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL, migrates and seeds it.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "carepath")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "carepath")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	if err := store.Seed(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "route:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}

// adminID returns the seeded admin's ID.
func adminID(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	if err := db.QueryRow("SELECT id FROM users WHERE role = 'admin' LIMIT 1").Scan(&id); err != nil {
		t.Fatalf("no admin user in database: %v", err)
	}
	return id
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return rn
}

// testSession creates a session.Data for testing.
func testSession(email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

func adminSession() *session.Data {
	return testSession("admin@carepath.local", "admin", true)
}

// withSession attaches sess to the request context.
func withSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(session.WithData(r.Context(), sess))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func intPtr(n int) *int { return &n }

// fakeActions is an in-memory ProgramActions. It applies the same admin
// gate and validation as the real actions.
type fakeActions struct {
	mu         sync.Mutex
	categories []models.Category
	programs   []models.Program
	details    map[uuid.UUID]models.ProgramDetail

	failPrograms error
	failCreate   error
	createCalls  int
	active       map[uuid.UUID]bool
	deleted      []uuid.UUID
}

func newFakeActions() *fakeActions {
	anxiety := models.Category{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "Anxiety"}
	sleep := models.Category{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Name: "Sleep"}
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &fakeActions{
		categories: []models.Category{anxiety, sleep},
		programs: []models.Program{
			{ID: uuid.New(), Title: "Anxiety Basics", CategoryID: &anxiety.ID, DurationDays: intPtr(30), IsActive: true, CreatedAt: base.Add(48 * time.Hour)},
			{ID: uuid.New(), Title: "Better Sleep", CategoryID: &sleep.ID, DurationDays: intPtr(14), IsActive: false, CreatedAt: base.Add(24 * time.Hour)},
			{ID: uuid.New(), Title: "Mindful Moments", IsSelfPaced: true, IsActive: true, CreatedAt: base},
		},
		details: map[uuid.UUID]models.ProgramDetail{},
		active:  map[uuid.UUID]bool{},
	}
}

func (f *fakeActions) GetCategories(ctx context.Context) result.Result[[]models.Category] {
	if _, err := actions.RequireAdmin(ctx); err != nil {
		return result.Fail[[]models.Category](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return result.OK(slices.Clone(f.categories))
}

func (f *fakeActions) GetPrograms(ctx context.Context) result.Result[[]models.Program] {
	if _, err := actions.RequireAdmin(ctx); err != nil {
		return result.Fail[[]models.Program](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPrograms != nil {
		return result.Fail[[]models.Program](f.failPrograms)
	}
	return result.OK(slices.Clone(f.programs))
}

func (f *fakeActions) GetProgramByID(ctx context.Context, id uuid.UUID) result.Result[models.ProgramDetail] {
	if _, err := actions.RequireAdmin(ctx); err != nil {
		return result.Fail[models.ProgramDetail](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.details[id]; ok {
		return result.OK(d)
	}
	for _, p := range f.programs {
		if p.ID == id {
			return result.OK(models.ProgramDetail{Program: p})
		}
	}
	return result.Fail[models.ProgramDetail](result.ErrNotFound)
}

func (f *fakeActions) CreateProgram(ctx context.Context, params models.CreateProgramParams) result.Result[models.Program] {
	params, err := schema.CreateProgram(params)
	if err != nil {
		return result.Fail[models.Program](err)
	}
	sess, err := actions.RequireAdmin(ctx)
	if err != nil {
		return result.Fail[models.Program](err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return result.Fail[models.Program](f.failCreate)
	}
	p := models.Program{
		ID:           uuid.New(),
		Title:        params.Title,
		Description:  params.Description,
		DurationDays: params.DurationDays,
		IsSelfPaced:  params.IsSelfPaced,
		CreatedBy:    sess.UserID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if params.CategoryID != "" {
		id := uuid.MustParse(params.CategoryID)
		p.CategoryID = &id
	}
	f.programs = append(f.programs, p)
	return result.OK(p)
}

func (f *fakeActions) SetProgramActive(ctx context.Context, id uuid.UUID, active bool) result.Result[bool] {
	if _, err := actions.RequireAdmin(ctx); err != nil {
		return result.Fail[bool](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[id] = active
	return result.OK(active)
}

func (f *fakeActions) DeleteProgram(ctx context.Context, id uuid.UUID) result.Result[uuid.UUID] {
	if _, err := actions.RequireAdmin(ctx); err != nil {
		return result.Fail[uuid.UUID](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return result.OK(id)
}

// fakeUsers is an in-memory Users keyed by email.
type fakeUsers struct {
	mu       sync.Mutex
	users    map[string]*models.User
	password string
	lookErr  error
	enabled  []uuid.UUID
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}, password: "secret"}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookErr != nil {
		return nil, f.lookErr
	}
	return f.users[email], nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.TOTPSecret = &secret
		}
	}
	return nil
}

func (f *fakeUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = append(f.enabled, id)
	for _, u := range f.users {
		if u.ID == id {
			u.TOTPEnabled = true
		}
	}
	return nil
}

func (f *fakeUsers) CheckPassword(_ *models.User, password string) bool {
	return password == f.password
}

// fakeSessions records session writes without Valkey.
type fakeSessions struct {
	created   []*session.Data
	updated   []*session.Data
	destroyed int
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = append(f.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session"})
	return "test-session", nil
}

func (f *fakeSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	f.updated = append(f.updated, data)
	return nil
}

func (f *fakeSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	f.destroyed++
	return nil
}
