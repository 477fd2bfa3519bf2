// internal/portfolio/service.go
//
// Portfolio content lifecycle — projects, gallery assets, and categories.
//
// Context
// -------
// Same orchestration contract as the blog service: validate before any
// mutation, write derivatives before the partial update, commit the
// transaction before deleting anything on disk.  New derivatives from a
// failed request are revoked by the uploader's deferred Rollback; old
// derivatives queued for deletion are removed only after commit.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package portfolio

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/files"
	"github.com/atelier-cms/atelier/internal/patch"
	"github.com/atelier-cms/atelier/internal/routing"
	"github.com/atelier-cms/atelier/internal/store"
	"github.com/atelier-cms/atelier/internal/uploads"
)

// Length bounds carried over from the admin UI contract.
const (
	categoryNameMax = 30
	projectNameMax  = 120
	descriptionMax  = 320
	contentMin      = 30
	contentMax      = 1000
)

// Service orchestrates portfolio content mutations.
type Service struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
	dir string // uploads root
}

// NewService wires a Service to the shared pool and the uploads directory.
func NewService(db *sqlx.DB, log *zap.SugaredLogger, uploadDir string) *Service {
	return &Service{db: db, log: log, dir: uploadDir}
}

// Categories returns every project category for the admin list.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return AllCategories(ctx, s.db)
}

// Projects returns every project, newest first.
func (s *Service) Projects(ctx context.Context) ([]Project, error) {
	return AllProjects(ctx, s.db)
}

// NewCategory is the validated create payload.
type NewCategory struct {
	Name      string `json:"name"`
	SortOrder int64  `json:"sort_order"`
}

// CategoryPatch is the tri-state update payload.
type CategoryPatch struct {
	Name      patch.Field[string] `json:"name,omitzero"       patch:"name"`
	SortOrder patch.Field[int64]  `json:"sort_order,omitzero" patch:"sort_order"`
}

// CreateCategory inserts a project category and returns its id.
func (s *Service) CreateCategory(ctx context.Context, f *NewCategory) (int64, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return 0, content.Invalid("name", "required")
	}
	if len(name) > categoryNameMax {
		return 0, content.Invalid("name", "too long")
	}

	id, err := InsertCategory(ctx, s.db, name, f.SortOrder)
	if err != nil {
		return 0, err
	}
	s.log.Infow("project category created", "id", id, "name", name)
	return id, nil
}

// UpdateCategory applies a tri-state patch to a project category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, p *CategoryPatch) error {
	ok, err := CategoryExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	if p.Name.IsNull() {
		return content.Invalid("name", "cannot be cleared")
	}
	if name, ok := p.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" || len(name) > categoryNameMax {
			return content.Invalid("name", "empty or too long")
		}
		p.Name = patch.Value(name)
	}
	if order, ok := p.SortOrder.Get(); ok && order < 0 {
		return content.Invalid("sort_order", "negative")
	}

	fields := patch.Fields(p)
	if len(fields) == 0 {
		return nil // nothing to update, issue no SQL
	}
	_, err = store.PartialUpdate(ctx, s.db, CategoriesTable, id, fields)
	return err
}

// RemoveCategory deletes a project category; links to projects cascade.
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
	s.log.Infow("project category deleted", "id", id)
	return nil
}

// NewProject is the validated create payload.  Assets arrive already
// decoded; the handler owns wire-format checks before decoding.
type NewProject struct {
	Name        string
	Description *string
	Content     string
	Categories  []int64
	Assets      []image.Image
}

// AssetPatch is one gallery directive inside a project update: delete the
// slot, or move it and set its visibility.
type AssetPatch struct {
	ID        int64  `json:"id"`
	SortOrder *int64 `json:"sort_order"`
	IsVisible *bool  `json:"is_visible"`
	Delete    bool   `json:"delete"`
}

// ProjectPatch is the tri-state update payload.  Categories, asset
// directives, and new uploads are side-band, deliberately untagged so the
// diff extractor never emits them as columns.
type ProjectPatch struct {
	Name        patch.Field[string] `json:"name,omitzero"        patch:"name"`
	Description patch.Field[string] `json:"description,omitzero" patch:"description"`
	Content     patch.Field[string] `json:"content,omitzero"     patch:"content"`

	Categories *[]int64      `json:"categories" patch:"-"`
	Assets     []AssetPatch  `json:"assets"     patch:"-"`
	NewAssets  []image.Image `json:"-"          patch:"-"`
}

// CreateProject inserts the project, links its categories, and uploads the
// gallery assets into slots 0..n — all in one transaction.  Returns the
// new project id.
func (s *Service) CreateProject(ctx context.Context, f *NewProject) (int64, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return 0, content.Invalid("name", "required")
	}
	if len(name) > projectNameMax {
		return 0, content.Invalid("name", "too long")
	}
	desc, err := normalizeDescription(f.Description)
	if err != nil {
		return 0, err
	}
	body := content.SanitizeProject(f.Content)
	if len(body) < contentMin {
		return 0, content.Invalid("content", "too short")
	}
	if len(f.Assets) > MaxAssets {
		return 0, content.Invalid("assets", "too many")
	}
	for _, catID := range f.Categories {
		ok, err := CategoryExists(ctx, s.db, catID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, content.ErrNotFound
		}
	}

	up := uploads.New(s.dir)
	defer up.Rollback()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("portfolio: begin: %w", err)
	}
	defer tx.Rollback()

	id, err := InsertProject(ctx, tx, name, desc, body)
	if err != nil {
		return 0, err
	}
	for _, catID := range f.Categories {
		if err := LinkCategory(ctx, tx, id, catID); err != nil {
			return 0, err
		}
	}
	for i, img := range f.Assets {
		if _, err := s.uploadAsset(ctx, tx, up, id, int64(i), img); err != nil {
			return 0, err
		}
	}
	if _, err := store.PartialUpdate(ctx, tx, ProjectsTable, id,
		map[string]any{"uri": routing.URI(name, id)}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("portfolio: commit: %w", err)
	}
	up.Commit()

	s.log.Infow("project created", "id", id, "name", name, "assets", len(f.Assets))
	return id, nil
}

// UpdateProject applies a tri-state patch, rebuilds the category links when
// a categories list is sent, executes the gallery directives, and fills the
// freed slots with new uploads.
func (s *Service) UpdateProject(ctx context.Context, id int64, p *ProjectPatch) error {
	ok, err := ProjectExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	if p.Name.IsNull() {
		return content.Invalid("name", "cannot be cleared")
	}
	if name, ok := p.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" || len(name) > projectNameMax {
			return content.Invalid("name", "empty or too long")
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
	if body, ok := p.Content.Get(); ok {
		body = content.SanitizeProject(body)
		if body == "" || len(body) > contentMax {
			return content.Invalid("content", "empty or too long")
		}
		p.Content = patch.Value(body)
	}
	if p.Categories != nil {
		for _, catID := range *p.Categories {
			ok, err := CategoryExists(ctx, s.db, catID)
			if err != nil {
				return err
			}
			if !ok {
				return content.ErrNotFound
			}
		}
	}

	up := uploads.New(s.dir)
	defer up.Rollback()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("portfolio: begin: %w", err)
	}
	defer tx.Rollback()

	// Disk paths to remove after commit.
	var stale []string

	if p.Categories != nil {
		if err := DetachCategories(ctx, tx, id); err != nil {
			return err
		}
		for _, catID := range *p.Categories {
			if err := LinkCategory(ctx, tx, id, catID); err != nil {
				return err
			}
		}
	}

	for _, dir := range p.Assets {
		if dir.Delete {
			asset, err := GetAsset(ctx, s.db, id, dir.ID)
			if err != nil {
				return err
			}
			if err := DeleteAsset(ctx, tx, id, dir.ID); err != nil {
				return err
			}
			if _, err := files.Delete(ctx, tx, asset.FileID); err != nil {
				return err
			}
			stale = append(stale, uploads.DerivativePaths(s.dir, asset.Path)...)
			continue
		}
		if dir.SortOrder != nil {
			visible := true
			if dir.IsVisible != nil {
				visible = *dir.IsVisible
			}
			if err := UpdateAsset(ctx, tx, id, dir.ID, *dir.SortOrder, visible); err != nil {
				return err
			}
		}
	}

	if len(p.NewAssets) > 0 {
		slots, err := AvailableSlots(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(p.NewAssets) > len(slots) {
			return content.Invalid("assets", "gallery full")
		}
		for i, img := range p.NewAssets {
			if _, err := s.uploadAsset(ctx, tx, up, id, slots[i], img); err != nil {
				return err
			}
		}
	}

	fields := patch.Fields(p)
	if name, ok := p.Name.Get(); ok {
		fields["uri"] = routing.URI(name, id)
	}
	if _, err := store.PartialUpdate(ctx, tx, ProjectsTable, id, fields); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("portfolio: commit: %w", err)
	}
	up.Commit()
	uploads.RemoveFiles(stale)

	return nil
}

// RemoveProject deletes the project, its asset and file rows, and — after
// the delete committed — the derivative files on disk.
func (s *Service) RemoveProject(ctx context.Context, id int64) error {
	ok, err := ProjectExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	assets, err := ProjectAssets(ctx, s.db, id)
	if err != nil {
		return err
	}

	// Collect every derivative path before touching the database.
	var stale []string
	for _, a := range assets {
		stale = append(stale, uploads.DerivativePaths(s.dir, a.Path)...)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("portfolio: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := DeleteProject(ctx, tx, id); err != nil {
		return err
	}
	for _, a := range assets {
		if _, err := files.Delete(ctx, tx, a.FileID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("portfolio: commit: %w", err)
	}
	uploads.RemoveFiles(stale)

	s.log.Infow("project deleted", "id", id, "files", len(assets))
	return nil
}

// ProjectDetails is the admin editor's read model.
type ProjectDetails struct {
	Project    *Project
	Assets     []Asset
	Categories []int64
}

// GetProjectDetails loads the project row, its gallery, and its category
// ids concurrently.
func (s *Service) GetProjectDetails(ctx context.Context, id int64) (*ProjectDetails, error) {
	ok, err := ProjectExists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, content.ErrNotFound
	}

	var d ProjectDetails
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Project, err = GetProject(gctx, s.db, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Assets, err = ProjectAssets(gctx, s.db, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Categories, err = ProjectCategoryIDs(gctx, s.db, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// uploadAsset writes gallery derivatives, registers the file, and ties it
// to the project in the given slot.
func (s *Service) uploadAsset(ctx context.Context, tx *sqlx.Tx, up *uploads.Uploader, projectID, slot int64, img image.Image) (int64, error) {
	name := fmt.Sprintf("%d_%d_%d", projectID, slot, time.Now().UnixMilli())
	stored, err := up.Handle(img, name, &uploads.DefaultMobile, &uploads.DefaultDesktop, true)
	if err != nil {
		return 0, err
	}
	fileID, err := files.Insert(ctx, tx, nil, stored)
	if err != nil {
		return 0, err
	}
	return InsertAsset(ctx, tx, projectID, fileID, slot)
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
