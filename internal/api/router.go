// internal/api/router.go
//
// HTTP router assembly.
//
// Layout
// ------
//   /metrics                  – Prometheus scrape endpoint.
//   /api/auth/…               – login, logout.
//   /api/blog/…               – admin blog endpoints (session required).
//   /api/portfolio/…          – admin portfolio endpoints (session required).
//   /api/settings             – admin settings endpoints (session required).
//   /…                        – public read surface, visit-logged.
//
// Middleware order: request-id and recoverer first, then security headers,
// then request enrichment (UA + Geo), then the session resolver.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelier-cms/atelier/internal/auth"
	"github.com/atelier-cms/atelier/internal/middleware"
	"github.com/atelier-cms/atelier/internal/requestinfo"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth      *AuthHandler
	Blog      *BlogHandler
	Portfolio *PortfolioHandler
	Settings  *SettingsHandler
	Public    *PublicHandler
	Sessions  *auth.Store
}

// NewRouter assembles the full handler tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich)
	r.Use(d.Sessions.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", d.Auth.Mount)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Route("/blog", d.Blog.Mount)
			r.Route("/portfolio", d.Portfolio.Mount)
			r.Route("/settings", d.Settings.Mount)
		})
	})

	d.Public.Mount(r)

	return r
}
