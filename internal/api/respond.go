// internal/api/respond.go
//
// JSON response and error-mapping helpers shared by every handler.
//
// Context
// -------
// Services return typed errors; handlers never inspect SQL errors
// directly.  The mapping is:
//
//   content.ValidationError → 400 with the offending field,
//   content.ErrNotFound     → 404,
//   auth.ErrBadCredentials  → 401,
//   store.ErrNoRowsAffected → 409 (row vanished mid-request),
//   anything else           → 500, logged with the request path.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/auth"
	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/store"
)

// writeJSON encodes v with the given status.  Encoding failures are logged
// and abandoned; the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

// writeError maps a service error to a status code and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field": verr.Field, "reason": verr.Reason,
		})
	case errors.Is(err, content.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, auth.ErrBadCredentials):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, store.ErrNoRowsAffected):
		w.WriteHeader(http.StatusConflict)
	default:
		zap.S().Errorw("request failed", "path", r.URL.Path, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return content.Invalid("body", "malformed json")
	}
	return nil
}
