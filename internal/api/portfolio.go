// internal/api/portfolio.go
//
// Admin endpoints for projects, gallery assets, and project categories.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/portfolio"
)

// PortfolioHandler exposes the portfolio service over HTTP.
type PortfolioHandler struct {
	svc *portfolio.Service
}

// NewPortfolioHandler wraps a portfolio service.
func NewPortfolioHandler(svc *portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

// Mount registers the portfolio routes on an (already authenticated)
// router.
func (h *PortfolioHandler) Mount(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Patch("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Get("/projects", h.listProjects)
	r.Get("/projects/{id}", h.getProject)
	r.Post("/projects", h.createProject)
	r.Patch("/projects/{id}", h.updateProject)
	r.Delete("/projects/{id}", h.deleteProject)
}

/*──────────────────────────── categories ──────────────────────────────────*/

func (h *PortfolioHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *PortfolioHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var f portfolio.NewCategory
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.svc.CreateCategory(r.Context(), &f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (h *PortfolioHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p portfolio.CategoryPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.UpdateCategory(r.Context(), id, &p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *PortfolioHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

/*──────────────────────────── projects ────────────────────────────────────*/

func (h *PortfolioHandler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Projects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *PortfolioHandler) getProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.GetProjectDetails(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":    d.Project,
		"assets":     d.Assets,
		"categories": d.Categories,
	})
}

// newProjectPayload is the JSON half of the multipart create request.
type newProjectPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Content     string  `json:"content"`
	Categories  []int64 `json:"categories"`
}

func (h *PortfolioHandler) createProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, r, content.Invalid("body", "not multipart"))
		return
	}
	var payload newProjectPayload
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &payload); err != nil {
		writeError(w, r, content.Invalid("payload", "malformed json"))
		return
	}
	assets, err := formImages(r, "assets")
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.svc.CreateProject(r.Context(), &portfolio.NewProject{
		Name:        payload.Name,
		Description: payload.Description,
		Content:     payload.Content,
		Categories:  payload.Categories,
		Assets:      assets,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (h *PortfolioHandler) updateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, r, content.Invalid("body", "not multipart"))
		return
	}
	var p portfolio.ProjectPatch
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &p); err != nil {
		writeError(w, r, content.Invalid("payload", "malformed json"))
		return
	}
	if p.NewAssets, err = formImages(r, "assets"); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.UpdateProject(r.Context(), id, &p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *PortfolioHandler) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
