// internal/api/auth.go
//
// Login and logout endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/auth"
)

// AuthHandler exposes the session store over HTTP.
type AuthHandler struct {
	store *auth.Store
}

// NewAuthHandler wraps a session store.
func NewAuthHandler(store *auth.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// Mount registers the auth routes.  These stay outside RequireUser.
func (h *AuthHandler) Mount(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.Login(r.Context(), w, r, p.Email, p.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout(r.Context(), w, r)
	w.WriteHeader(http.StatusOK)
}
