// internal/api/blog.go
//
// Admin endpoints for blog categories and articles.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/blog"
	"github.com/atelier-cms/atelier/internal/content"
)

// BlogHandler exposes the blog service over HTTP.
type BlogHandler struct {
	svc *blog.Service
}

// NewBlogHandler wraps a blog service.
func NewBlogHandler(svc *blog.Service) *BlogHandler {
	return &BlogHandler{svc: svc}
}

// Mount registers the blog routes on an (already authenticated) router.
func (h *BlogHandler) Mount(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Patch("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	r.Get("/articles/{id}", h.getArticle)
	r.Post("/articles", h.createArticle)
	r.Patch("/articles/{id}", h.updateArticle)
	r.Delete("/articles/{id}", h.deleteArticle)
}

/*──────────────────────────── categories ──────────────────────────────────*/

func (h *BlogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *BlogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var f blog.NewCategory
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

func (h *BlogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p blog.CategoryPatch
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

func (h *BlogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
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

/*──────────────────────────── articles ────────────────────────────────────*/

func (h *BlogHandler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.GetArticleDetails(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article": d.Article,
		"images":  d.Images,
	})
}

// newArticlePayload is the JSON half of the multipart create request.
type newArticlePayload struct {
	CategoryID  *int64  `json:"category_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Content     string  `json:"content"`
	IsPublished *bool   `json:"is_published"`
	IsSEO       *bool   `json:"is_seo"`
}

func (h *BlogHandler) createArticle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, r, content.Invalid("body", "not multipart"))
		return
	}
	var payload newArticlePayload
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &payload); err != nil {
		writeError(w, r, content.Invalid("payload", "malformed json"))
		return
	}
	cover, err := formImage(r, "cover")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pictures, err := formImages(r, "pictures")
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.svc.CreateArticle(r.Context(), &blog.NewArticle{
		CategoryID:  payload.CategoryID,
		Title:       payload.Title,
		Description: payload.Description,
		Content:     payload.Content,
		IsPublished: payload.IsPublished,
		IsSEO:       payload.IsSEO,
		Cover:       cover,
		Pictures:    pictures,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (h *BlogHandler) updateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, r, content.Invalid("body", "not multipart"))
		return
	}
	var p blog.ArticlePatch
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &p); err != nil {
		writeError(w, r, content.Invalid("payload", "malformed json"))
		return
	}
	if p.Cover, err = formImage(r, "cover"); err != nil {
		writeError(w, r, err)
		return
	}
	if p.Pictures, err = formImages(r, "pictures"); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.UpdateArticle(r.Context(), id, &p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *BlogHandler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.RemoveArticle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, content.Invalid("id", "not a positive integer")
	}
	return id, nil
}
