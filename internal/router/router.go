// Package router sets up all HTTP routes and middleware chains for the
// CarePath admin server. It organizes routes into an unauthenticated auth
// group, a 2FA group and the admin program area.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"carepath/internal/handlers"
	"carepath/internal/metrics"
	"carepath/internal/middleware"
	"carepath/web"
)

// Options carries everything New wires into the router.
type Options struct {
	Sessions middleware.SessionLoader
	Admin    *handlers.Admin
	Auth     *handlers.Auth

	// Metrics and Registry may be nil; /metrics is then not mounted.
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	// MetricsPassword enables basic auth on /metrics.
	MetricsUsername string
	MetricsPassword string

	// LoginLimiter throttles credential and code submissions. May be nil.
	LoginLimiter  *middleware.RateLimiter
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Instrument(opts.Metrics))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	if opts.Registry != nil {
		h := metrics.Handler(opts.Registry)
		if opts.MetricsPassword != "" {
			h = chimw.BasicAuth("metrics", map[string]string{opts.MetricsUsername: opts.MetricsPassword})(h)
		}
		r.Method(http.MethodGet, "/metrics", h)
	}

	r.Handle("/static/*", http.FileServerFS(web.StaticFS))

	r.Get("/", redirectTo("/admin/programs"))

	throttle := func(h http.HandlerFunc) http.Handler {
		if opts.LoginLimiter == nil {
			return h
		}
		return opts.LoginLimiter.Middleware(h)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/", redirectTo("/admin/programs"))

		// Auth pages, accessible without a session.
		r.Get("/login", opts.Auth.LoginPage)
		r.Method(http.MethodPost, "/login", throttle(opts.Auth.LoginSubmit))
		r.Post("/logout", opts.Auth.Logout)

		// 2FA: requires a session but not completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", opts.Auth.TwoFASetupPage)
			r.Method(http.MethodPost, "/2fa/setup", throttle(opts.Auth.TwoFAVerifySubmit))
			r.Get("/2fa/verify", opts.Auth.TwoFAVerifyPage)
			r.Method(http.MethodPost, "/2fa/verify", throttle(opts.Auth.TwoFAVerifySubmit))
		})

		// Program administration: signed in, 2FA verified, admin role.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Route("/programs", func(r chi.Router) {
				r.Get("/", opts.Admin.ProgramsList)
				r.Post("/", opts.Admin.ProgramCreate)
				r.Get("/new", opts.Admin.ProgramNew)
				r.Get("/{id}", opts.Admin.ProgramDetail)
				r.Post("/{id}/toggle", opts.Admin.ProgramToggle)
				r.Delete("/{id}", opts.Admin.ProgramDelete)
			})

			r.Route("/api", func(r chi.Router) {
				r.Get("/categories", opts.Admin.APICategories)
				r.Get("/programs", opts.Admin.APIPrograms)
				r.Post("/programs", opts.Admin.APICreateProgram)
			})
		})
	})

	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
