// internal/settings/settings.go
//
// Site-wide appearance settings.
//
// Context
// -------
// The settings table holds exactly one row, seeded by the migrations.
// Updates go through the same tri-state patch and partial-update machinery
// as the content tables, just pinned to id 1.
package settings

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/patch"
	"github.com/atelier-cms/atelier/internal/store"
)

// Table is the partial-update target for settings PATCH calls.
const Table = "settings"

// rowID pins every query to the singleton row.
const rowID = 1

var validate = validator.New()

// Settings mirrors the singleton settings row.
type Settings struct {
	BackgroundColor string `db:"background_color" json:"background_color"`
	TitleColor      string `db:"title_color"      json:"title_color"`
	TextColor       string `db:"text_color"       json:"text_color"`
}

// Patch is the tri-state update payload.  Every color is structurally
// required, so nulls are rejected before extraction.
type Patch struct {
	BackgroundColor patch.Field[string] `json:"background_color,omitzero" patch:"background_color"`
	TitleColor      patch.Field[string] `json:"title_color,omitzero"      patch:"title_color"`
	TextColor       patch.Field[string] `json:"text_color,omitzero"       patch:"text_color"`
}

// Service reads and updates the singleton settings row.
type Service struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
}

// NewService wires a Service to the shared pool.
func NewService(db *sqlx.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	const stmt = `
        SELECT background_color, title_color, text_color
        FROM   settings
        WHERE  id = ?
        LIMIT  1`

	var row Settings
	if err := sqlx.GetContext(ctx, s.db, &row, stmt, rowID); err != nil {
		return nil, fmt.Errorf("settings: get: %w", err)
	}
	return &row, nil
}

// Update applies a tri-state patch to the singleton row.  Colors must be
// hex values like #1a2b3c.
func (s *Service) Update(ctx context.Context, p *Patch) error {
	for name, f := range map[string]patch.Field[string]{
		"background_color": p.BackgroundColor,
		"title_color":      p.TitleColor,
		"text_color":       p.TextColor,
	} {
		if f.IsNull() {
			return content.Invalid(name, "cannot be cleared")
		}
		if v, ok := f.Get(); ok {
			if err := validate.Var(v, "hexcolor"); err != nil {
				return content.Invalid(name, "not a hex color")
			}
		}
	}

	fields := patch.Fields(p)
	if len(fields) == 0 {
		return nil // nothing to update, issue no SQL
	}
	if _, err := store.PartialUpdate(ctx, s.db, Table, rowID, fields); err != nil {
		return err
	}
	s.log.Infow("settings updated", "fields", len(fields))
	return nil
}
