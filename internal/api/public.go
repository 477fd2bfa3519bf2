// internal/api/public.go
//
// Public read endpoints.  Each hit is recorded in the visit log; recording
// is best-effort and never blocks the response.
//
// Responses are memoized in a small TTL LRU, so admin edits surface on the
// public side within cacheTTL at the latest.  That bound is fine for a
// portfolio site and spares the database on traffic spikes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/blog"
	"github.com/atelier-cms/atelier/internal/cache"
	"github.com/atelier-cms/atelier/internal/portfolio"
	"github.com/atelier-cms/atelier/internal/settings"
	"github.com/atelier-cms/atelier/internal/visits"
)

const (
	cacheSize = 256
	cacheTTL  = 30 * time.Second
)

// PublicHandler serves the unauthenticated read surface.
type PublicHandler struct {
	blog      *blog.Service
	portfolio *portfolio.Service
	settings  *settings.Service
	visits    *visits.Recorder
	cache     *cache.LRU
}

// NewPublicHandler wires the public read surface.
func NewPublicHandler(b *blog.Service, p *portfolio.Service, s *settings.Service, v *visits.Recorder) *PublicHandler {
	return &PublicHandler{
		blog:      b,
		portfolio: p,
		settings:  s,
		visits:    v,
		cache:     cache.New(cacheSize, cacheTTL),
	}
}

// Mount registers the public routes.
func (h *PublicHandler) Mount(r chi.Router) {
	r.Get("/blog", h.listArticles)
	r.Get("/blog/{id}", h.getArticle)
	r.Get("/portfolio", h.listProjects)
	r.Get("/portfolio/{id}", h.getProject)
	r.Get("/settings", h.getSettings)
}

// cached serves key from the LRU, loading and storing it on a miss.
func (h *PublicHandler) cached(w http.ResponseWriter, r *http.Request, key string, load func() (any, error)) {
	if v, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}
	v, err := load()
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.Add(key, v)
	writeJSON(w, http.StatusOK, v)
}

func (h *PublicHandler) listArticles(w http.ResponseWriter, r *http.Request) {
	h.visits.Record(r.Context(), r, visits.PageBlog, nil)
	h.cached(w, r, "blog", func() (any, error) {
		return h.blog.Published(r.Context())
	})
}

func (h *PublicHandler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.visits.Record(r.Context(), r, visits.PageArticle, &id)
	h.cached(w, r, "article:"+chi.URLParam(r, "id"), func() (any, error) {
		d, err := h.blog.GetArticleDetails(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"article": d.Article, "images": d.Images}, nil
	})
}

func (h *PublicHandler) listProjects(w http.ResponseWriter, r *http.Request) {
	h.visits.Record(r.Context(), r, visits.PagePortfolio, nil)
	h.cached(w, r, "portfolio", func() (any, error) {
		return h.portfolio.Projects(r.Context())
	})
}

func (h *PublicHandler) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.visits.Record(r.Context(), r, visits.PageProject, &id)
	h.cached(w, r, "project:"+chi.URLParam(r, "id"), func() (any, error) {
		d, err := h.portfolio.GetProjectDetails(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"project":    d.Project,
			"assets":     d.Assets,
			"categories": d.Categories,
		}, nil
	})
}

func (h *PublicHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "settings", func() (any, error) {
		return h.settings.Get(r.Context())
	})
}
