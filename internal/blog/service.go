// internal/blog/service.go
//
// Blog content lifecycle — categories.
//
// Context
// -------
// Service owns the create/update/delete orchestration the admin API calls
// into.  Handlers stay thin: they decode payloads, check the session, call
// one Service method, and map the returned error kind to a status code.
//
// Every mutating method follows the same shape: validate and normalise
// first, open the transaction, write, commit, and only then touch the
// filesystem destructively.  A failure anywhere before commit leaves both
// the database and the uploads directory untouched.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/patch"
	"github.com/atelier-cms/atelier/internal/routing"
	"github.com/atelier-cms/atelier/internal/store"
)

// Length bounds carried over from the admin UI contract.
const (
	categoryNameMax = 60
	titleMax        = 255
	descriptionMax  = 320
)

// Service orchestrates blog content mutations.
type Service struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
	dir string // uploads root
}

// NewService wires a Service to the shared pool and the uploads directory.
func NewService(db *sqlx.DB, log *zap.SugaredLogger, uploadDir string) *Service {
	return &Service{db: db, log: log, dir: uploadDir}
}

// Categories returns every category for the admin list.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return AllCategories(ctx, s.db)
}

// Published returns every published article for the public blog page.
func (s *Service) Published(ctx context.Context) ([]Article, error) {
	return PublishedArticles(ctx, s.db)
}

// NewCategory is the validated create payload.
type NewCategory struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsVisible   *bool   `json:"is_visible"`
	IsSEO       *bool   `json:"is_seo"`
	SortOrder   int64   `json:"sort_order"`
}

// CategoryPatch is the tri-state update payload.  The patch tags name the
// columns the diff extractor may emit; nothing else ever reaches SQL.
type CategoryPatch struct {
	Name        patch.Field[string] `json:"name,omitzero"        patch:"name"`
	Description patch.Field[string] `json:"description,omitzero" patch:"description"`
	IsVisible   patch.Field[bool]   `json:"is_visible,omitzero"  patch:"is_visible"`
	IsSEO       patch.Field[bool]   `json:"is_seo,omitzero"      patch:"is_seo"`
	SortOrder   patch.Field[int64]  `json:"sort_order,omitzero"  patch:"sort_order"`
}

// CreateCategory inserts a category and fills its uri slug, which embeds
// the generated id.  Returns the new id.
func (s *Service) CreateCategory(ctx context.Context, f *NewCategory) (int64, error) {
	name, err := normalizeName(f.Name, categoryNameMax)
	if err != nil {
		return 0, err
	}
	desc, err := normalizeDescription(f.Description)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("blog: begin: %w", err)
	}
	defer tx.Rollback()

	id, err := InsertCategory(ctx, tx, name, desc, f.IsVisible, f.IsSEO, f.SortOrder)
	if err != nil {
		return 0, err
	}
	if _, err := store.PartialUpdate(ctx, tx, CategoriesTable, id,
		map[string]any{"uri": routing.URI(name, id)}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("blog: commit: %w", err)
	}
	s.log.Infow("category created", "id", id, "name", name)
	return id, nil
}

// UpdateCategory applies a tri-state patch.  The uri slug is regenerated
// whenever the name changes so slugs never go stale.
func (s *Service) UpdateCategory(ctx context.Context, id int64, p *CategoryPatch) error {
	ok, err := CategoryExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	// name is structurally required: clearing it is invalid even though
	// the patch type can express a null.
	if p.Name.IsNull() {
		return content.Invalid("name", "cannot be cleared")
	}
	if name, ok := p.Name.Get(); ok {
		name, err := normalizeName(name, categoryNameMax)
		if err != nil {
			return err
		}
		p.Name = patch.Value(name)
	}
	if desc, ok := p.Description.Get(); ok {
		clean := content.SanitizeInline(desc)
		if len(clean) > descriptionMax {
			return content.Invalid("description", "too long")
		}
		p.Description = patch.Value(clean)
	}

	fields := patch.Fields(p)
	if name, ok := p.Name.Get(); ok {
		fields["uri"] = routing.URI(name, id)
	}
	if len(fields) == 0 {
		return nil // nothing to update, issue no SQL
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("blog: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := store.PartialUpdate(ctx, tx, CategoriesTable, id, fields); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("blog: commit: %w", err)
	}
	return nil
}

// RemoveCategory deletes a category.  Articles keep existing with a NULL
// category; no files are involved.
func (s *Service) RemoveCategory(ctx context.Context, id int64) error {
	ok, err := CategoryExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	if _, err := DeleteCategory(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Infow("category deleted", "id", id)
	return nil
}

// normalizeName trims and bounds a required name/title field.
func normalizeName(name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", content.Invalid("name", "required")
	}
	if len(name) > max {
		return "", content.Invalid("name", "too long")
	}
	return name, nil
}

// normalizeDescription sanitizes an optional description in place.
func normalizeDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	clean := content.SanitizeInline(*desc)
	if len(clean) > descriptionMax {
		return nil, content.Invalid("description", "too long")
	}
	return &clean, nil
}
