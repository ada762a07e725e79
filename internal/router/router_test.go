// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"carepath/internal/handlers"
	"carepath/internal/metrics"
	"carepath/internal/middleware"
	"carepath/internal/render"
	"carepath/internal/session"
)

// stubSessions returns the same session for every request.
type stubSessions struct{ data *session.Data }

func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, nil
}

func newTestRouter(t *testing.T, sess *session.Data) http.Handler {
	t.Helper()
	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return New(Options{
		Sessions:        stubSessions{data: sess},
		Admin:           handlers.NewAdmin(rn, nil, nil, nil, nil, m),
		Auth:            handlers.NewAuth(rn, nil, nil, m),
		Metrics:         m,
		Registry:        reg,
		MetricsUsername: "metrics",
		MetricsPassword: "s3cret",
	})
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes_Anonymous(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantLoc  string
	}{
		{"GET", "/health", http.StatusOK, ""},
		{"GET", "/", http.StatusSeeOther, "/admin/programs"},
		{"GET", "/admin/", http.StatusSeeOther, "/admin/programs"},
		{"GET", "/admin/login", http.StatusOK, ""},
		{"GET", "/admin/programs", http.StatusSeeOther, "/admin/login"},
		{"GET", "/admin/programs/new", http.StatusSeeOther, "/admin/login"},
		{"GET", "/admin/api/programs", http.StatusSeeOther, "/admin/login"},
		{"GET", "/admin/2fa/setup", http.StatusSeeOther, "/admin/login"},
		{"GET", "/static/css/admin.css", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location: got %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
		})
	}
}

func TestRoutes_SecurityHeadersAndRequestID(t *testing.T) {
	h := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if got := rec.Header().Get("Content-Security-Policy"); got != middleware.ContentSecurityPolicy {
		t.Errorf("CSP: got %q", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
}

func TestRoutes_PatientForbidden(t *testing.T) {
	h := newTestRouter(t, &session.Data{UserID: uuid.New(), Role: "patient", TwoFADone: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/programs", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestRoutes_PostWithoutCSRFRejected(t *testing.T) {
	h := newTestRouter(t, &session.Data{UserID: uuid.New(), Role: "admin", TwoFADone: true})
	req := httptest.NewRequest("POST", "/admin/programs", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestMetricsRequiresBasicAuth(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /metrics: got %d, want 401", rec.Code)
	}

	// Generate one sample so the HTTP collector is present in the output.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("metrics", "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized /metrics: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "carepath_") {
		t.Error("expected carepath metrics in exposition")
	}
}
