// internal/blog/articles_service.go
//
// Blog content lifecycle — articles.
//
// Context
// -------
// Articles own a cover file and zero or more inline images referenced from
// the body as `[[id]]` placeholders.  Create, update, and delete coordinate
// three resources: the blog tables, the file registry, and the derivative
// files on disk.  The ordering contract is fixed:
//
//   1. validation strictly precedes any mutation,
//   2. every derivative write precedes the partial update,
//   3. the DB commit strictly precedes any disk deletion.
//
// New derivatives written during a failed request are revoked by the
// uploader's deferred Rollback; deletions of old derivatives are collected
// during the transaction and executed only after commit.  That keeps the
// two stores consistent without a cross-store two-phase commit.
package blog

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/files"
	"github.com/atelier-cms/atelier/internal/patch"
	"github.com/atelier-cms/atelier/internal/routing"
	"github.com/atelier-cms/atelier/internal/store"
	"github.com/atelier-cms/atelier/internal/uploads"
)

// Cover derivatives are wide banners, not squares.
var (
	coverMobile  = uploads.Bounds{W: 500, H: 250}
	coverDesktop = uploads.Bounds{W: 700, H: 350}
)

// NewArticle is the validated create payload.  Cover and Pictures arrive
// already decoded; the handler owns wire-format checks (MIME type, byte
// size) before decoding.
type NewArticle struct {
	CategoryID  *int64
	Title       string
	Description *string
	Content     string
	IsPublished *bool
	IsSEO       *bool
	Cover       image.Image
	Pictures    []image.Image
}

// ArticlePatch is the tri-state update payload.  Cover and Pictures are
// side-band uploads, deliberately untagged so the diff extractor never
// emits them as columns.
type ArticlePatch struct {
	CategoryID  patch.Field[int64]  `json:"category_id,omitzero"  patch:"category_id"`
	Title       patch.Field[string] `json:"title,omitzero"        patch:"title"`
	Description patch.Field[string] `json:"description,omitzero"  patch:"description"`
	Content     patch.Field[string] `json:"content,omitzero"      patch:"content"`
	IsPublished patch.Field[bool]   `json:"is_published,omitzero" patch:"is_published"`
	IsSEO       patch.Field[bool]   `json:"is_seo,omitzero"       patch:"is_seo"`

	Cover    image.Image   `json:"-" patch:"-"`
	Pictures []image.Image `json:"-" patch:"-"`
}

// CreateArticle uploads the cover and inline pictures, inserts the article,
// rewrites the `[[index]]` placeholders to registered image ids, and fills
// the uri slug — all in one transaction.  Returns the new article id.
func (s *Service) CreateArticle(ctx context.Context, f *NewArticle) (int64, error) {
	title, err := normalizeName(f.Title, titleMax)
	if err != nil {
		return 0, err
	}
	desc, err := normalizeDescription(f.Description)
	if err != nil {
		return 0, err
	}
	if f.Cover == nil {
		return 0, content.Invalid("cover", "required")
	}
	if f.CategoryID != nil {
		ok, err := CategoryExists(ctx, s.db, *f.CategoryID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, content.ErrNotFound
		}
	}
	body := content.SanitizeBody(f.Content)

	up := uploads.New(s.dir)
	defer up.Rollback()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("blog: begin: %w", err)
	}
	defer tx.Rollback()

	coverID, err := s.uploadCover(ctx, tx, up, f.Cover)
	if err != nil {
		return 0, err
	}

	id, err := InsertArticle(ctx, tx, newArticle{
		CategoryID:  f.CategoryID,
		CoverID:     coverID,
		Title:       title,
		Description: desc,
		Content:     body,
		IsPublished: f.IsPublished,
		IsSEO:       f.IsSEO,
	})
	if err != nil {
		return 0, err
	}

	for i, pic := range f.Pictures {
		imgID, err := s.uploadInline(ctx, tx, up, id, i, pic)
		if err != nil {
			return 0, err
		}
		body = content.RewriteRef(body, i, imgID)
	}

	if _, err := store.PartialUpdate(ctx, tx, ArticlesTable, id, map[string]any{
		"uri":     routing.URI(title, id),
		"content": body,
	}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("blog: commit: %w", err)
	}
	up.Commit()

	s.log.Infow("article created", "id", id, "title", title, "images", len(f.Pictures))
	return id, nil
}

// UpdateArticle applies a tri-state patch, replacing the cover and adding
// or orphaning inline images as the new body dictates.
func (s *Service) UpdateArticle(ctx context.Context, id int64, p *ArticlePatch) error {
	ok, err := ArticleExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	if p.Title.IsNull() {
		return content.Invalid("title", "cannot be cleared")
	}
	if title, ok := p.Title.Get(); ok {
		title, err := normalizeName(title, titleMax)
		if err != nil {
			return err
		}
		p.Title = patch.Value(title)
	}
	if desc, ok := p.Description.Get(); ok {
		clean := content.SanitizeInline(desc)
		if clean == "" || len(clean) > descriptionMax {
			return content.Invalid("description", "empty or too long")
		}
		p.Description = patch.Value(clean)
	}
	if catID, ok := p.CategoryID.Get(); ok {
		ok, err := CategoryExists(ctx, s.db, catID)
		if err != nil {
			return err
		}
		if !ok {
			return content.ErrNotFound
		}
	}
	if len(p.Pictures) > 0 && !p.Content.Defined() {
		return content.Invalid("content", "required when adding pictures")
	}

	oldCoverID, err := ArticleCoverID(ctx, s.db, id)
	if err != nil {
		return err
	}

	up := uploads.New(s.dir)
	defer up.Rollback()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("blog: begin: %w", err)
	}
	defer tx.Rollback()

	// Disk paths to remove after commit: orphaned inline images and, when
	// the cover is replaced, the old cover's derivatives.
	var stale []string

	if body, ok := p.Content.Get(); ok {
		body = content.SanitizeBody(body)

		removed, err := s.dropOrphanImages(ctx, tx, id, body)
		if err != nil {
			return err
		}
		stale = append(stale, removed...)
		p.Content = patch.Value(body)
	}

	if len(p.Pictures) > 0 {
		body, _ := p.Content.Get()
		for i, pic := range p.Pictures {
			imgID, err := s.uploadInline(ctx, tx, up, id, i, pic)
			if err != nil {
				return err
			}
			body = content.RewriteRef(body, i, imgID)
		}
		p.Content = patch.Value(body)
	}

	fields := patch.Fields(p)
	if title, ok := p.Title.Get(); ok {
		fields["uri"] = routing.URI(title, id)
	}

	coverReplaced := p.Cover != nil
	if coverReplaced {
		newCoverID, err := s.uploadCover(ctx, tx, up, p.Cover)
		if err != nil {
			return err
		}
		oldPath, err := files.Path(ctx, tx, oldCoverID)
		if err != nil {
			return err
		}
		stale = append(stale, uploads.DerivativePaths(s.dir, oldPath)...)
		fields["cover_id"] = newCoverID
	}

	if _, err := store.PartialUpdate(ctx, tx, ArticlesTable, id, fields); err != nil {
		return err
	}
	if coverReplaced {
		if _, err := files.Delete(ctx, tx, oldCoverID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("blog: commit: %w", err)
	}
	up.Commit()
	uploads.RemoveFiles(stale)

	return nil
}

// RemoveArticle deletes the article, its inline-image and file rows, and —
// after the delete committed — the derivative files on disk.
func (s *Service) RemoveArticle(ctx context.Context, id int64) error {
	ok, err := ArticleExists(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return content.ErrNotFound
	}

	// Independent read-only lookups; run them concurrently.
	var (
		coverID   int64
		coverPath string
		images    []ArticleImage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if coverID, err = ArticleCoverID(gctx, s.db, id); err != nil {
			return err
		}
		coverPath, err = files.Path(gctx, s.db, coverID)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = ArticleImages(gctx, s.db, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// Collect every derivative path before touching the database.
	stale := uploads.DerivativePaths(s.dir, coverPath)
	for _, img := range images {
		stale = append(stale, uploads.DerivativePaths(s.dir, img.Path)...)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("blog: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := DeleteArticle(ctx, tx, id); err != nil {
		return err
	}
	for _, img := range images {
		if _, err := files.Delete(ctx, tx, img.FileID); err != nil {
			return err
		}
	}
	if _, err := files.Delete(ctx, tx, coverID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("blog: commit: %w", err)
	}

	// Disk removal strictly after the DB delete: a failed removal leaves
	// harmless orphaned bytes, never a dangling row.
	uploads.RemoveFiles(stale)

	s.log.Infow("article deleted", "id", id, "files", len(images)+1)
	return nil
}

// ArticleDetails is the admin editor's read model.
type ArticleDetails struct {
	Article *Article
	Images  []ArticleImage
}

// GetArticleDetails loads the article row and its inline images
// concurrently.
func (s *Service) GetArticleDetails(ctx context.Context, id int64) (*ArticleDetails, error) {
	ok, err := ArticleExists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, content.ErrNotFound
	}

	var d ArticleDetails
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Article, err = GetArticle(gctx, s.db, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Images, err = ArticleImages(gctx, s.db, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// uploadCover writes cover derivatives and registers the file row.
func (s *Service) uploadCover(ctx context.Context, tx *sqlx.Tx, up *uploads.Uploader, img image.Image) (int64, error) {
	name := fmt.Sprintf("cover_%d", time.Now().UnixMilli())
	stored, err := up.Handle(img, name, &coverMobile, &coverDesktop, true)
	if err != nil {
		return 0, err
	}
	return files.Insert(ctx, tx, nil, stored)
}

// uploadInline writes inline-picture derivatives, registers the file, and
// ties it to the article.  Returns the placeholder id.
func (s *Service) uploadInline(ctx context.Context, tx *sqlx.Tx, up *uploads.Uploader, articleID int64, index int, img image.Image) (int64, error) {
	name := fmt.Sprintf("%d_%d_%d", articleID, index, time.Now().UnixMilli())
	stored, err := up.Handle(img, name, &uploads.DefaultMobile, &uploads.DefaultDesktop, true)
	if err != nil {
		return 0, err
	}
	fileID, err := files.Insert(ctx, tx, nil, stored)
	if err != nil {
		return 0, err
	}
	return InsertArticleImage(ctx, tx, articleID, fileID)
}

// dropOrphanImages deletes the rows of previously registered inline images
// no longer referenced by body, and returns their derivative paths for
// post-commit removal.
func (s *Service) dropOrphanImages(ctx context.Context, tx *sqlx.Tx, articleID int64, body string) ([]string, error) {
	images, err := ArticleImages(ctx, s.db, articleID)
	if err != nil {
		return nil, err
	}

	refs := content.ImageRefs(body)
	var stale []string
	for _, img := range images {
		if refs[img.ID] {
			continue
		}
		if err := DeleteArticleImage(ctx, tx, img.ID); err != nil {
			return nil, err
		}
		if _, err := files.Delete(ctx, tx, img.FileID); err != nil {
			return nil, err
		}
		stale = append(stale, uploads.DerivativePaths(s.dir, img.Path)...)
	}
	return stale, nil
}
