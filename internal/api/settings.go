// internal/api/settings.go
//
// Admin endpoints for the site-appearance settings.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/settings"
)

// SettingsHandler exposes the settings service over HTTP.
type SettingsHandler struct {
	svc *settings.Service
}

// NewSettingsHandler wraps a settings service.
func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Mount registers the settings routes on an (already authenticated)
// router.
func (h *SettingsHandler) Mount(r chi.Router) {
	r.Get("/", h.get)
	r.Patch("/", h.update)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Update(r.Context(), &p); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
