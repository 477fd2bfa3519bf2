// internal/blog/service_test.go
//
// Unit-tests for the blog service using sqlmock.  Filesystem effects go to
// a temp directory; no real database is involved.
//
// Run: go test ./internal/blog -v

package blog

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atelier-cms/atelier/internal/content"
	"github.com/atelier-cms/atelier/internal/patch"
	"github.com/atelier-cms/atelier/internal/uploads"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, string) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, uploads.MobileDir), 0o755); err != nil {
		t.Fatalf("mkdir mobile: %v", err)
	}
	svc := NewService(sqlx.NewDb(db, "sqlmock"), zap.NewNop().Sugar(), dir)
	return svc, mock, dir
}

// touchDerivatives creates the four on-disk derivative files for stored.
func touchDerivatives(t *testing.T, dir, stored string) []string {
	t.Helper()
	paths := uploads.DerivativePaths(dir, stored)
	for _, p := range paths {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("touch %s: %v", p, err)
		}
	}
	return paths
}

// countFiles returns the number of regular files anywhere under dir.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return n
}

/*──────────────────────────── categories ──────────────────────────────────*/

func TestCreateCategory(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO blog_categories (name, description, is_visible, is_seo, sort_order, uri) VALUES (?, ?, ?, ?, ?, '')`,
	)).
		WithArgs("Lorem Ipsum", nil, nil, nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_categories SET uri = ? WHERE id = ?`,
	)).
		WithArgs("lorem-ipsum-5", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.CreateCategory(context.Background(), &NewCategory{
		Name:      "  Lorem Ipsum ",
		SortOrder: 2,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if id != 5 {
		t.Fatalf("id = %d, want 5", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateCategoryRejectsEmptyName(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.CreateCategory(context.Background(), &NewCategory{Name: "   "})
	if !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// Validation strictly precedes any SQL.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestUpdateCategoryRegeneratesURI(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_categories SET name = ?, uri = ? WHERE id = ?`,
	)).
		WithArgs("Dolor Sit", "dolor-sit-5", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &CategoryPatch{Name: patch.Value("Dolor Sit")}
	if err := svc.UpdateCategory(context.Background(), 5, p); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateCategoryNullNameRejected(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := &CategoryPatch{Name: patch.Null[string]()}
	err := svc.UpdateCategory(context.Background(), 5, p)
	if !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateCategoryEmptyPatchIssuesNoSQL(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	if err := svc.UpdateCategory(context.Background(), 5, &CategoryPatch{}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err := svc.UpdateCategory(context.Background(), 99, &CategoryPatch{})
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

/*──────────────────────────── articles ────────────────────────────────────*/

func TestCreateArticleFailedUpdateRemovesDerivatives(t *testing.T) {
	svc, mock, dir := newTestService(t)

	mock.ExpectBegin()
	// Cover upload registers its file first.
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO files (name, path) VALUES (?, ?)`,
	)).
		WithArgs(nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO blog_articles (category_id, cover_id, title, description, content, is_published, is_seo, uri) VALUES (?, ?, ?, ?, ?, ?, ?, '')`,
	)).
		WithArgs(nil, int64(1), "Skyline", nil, sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(10, 1))
	// Inline picture: file row plus the article link.
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO files (name, path) VALUES (?, ?)`,
	)).
		WithArgs(nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO blog_article_images (article_id, file_id) VALUES (?, ?)`,
	)).
		WithArgs(int64(10), int64(20)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_articles SET content = ?, uri = ? WHERE id = ?`,
	)).
		WithArgs(sqlmock.AnyArg(), "skyline-10", int64(10)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.CreateArticle(context.Background(), &NewArticle{
		Title:    "Skyline",
		Content:  "<p>see [[0]]</p>",
		Cover:    image.NewNRGBA(image.Rect(0, 0, 8, 8)),
		Pictures: []image.Image{image.NewNRGBA(image.Rect(0, 0, 8, 8))},
	})
	if err == nil {
		t.Fatal("expected CreateArticle to fail")
	}

	// Cover and picture derivatives were written before the failing update;
	// the deferred uploader rollback must leave the directory empty.
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d derivative files survived the rollback, want 0", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateArticleDropsOrphanImages(t *testing.T) {
	svc, mock, dir := newTestService(t)

	keep := touchDerivatives(t, dir, "keep_2.jpg")
	orphan := touchDerivatives(t, dir, "orphan_3.jpg")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT cover_id FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}).AddRow(int64(1)))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT bai.id, bai.file_id, f.path FROM blog_article_images bai JOIN files f ON bai.file_id = f.id WHERE bai.article_id = ?`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path"}).
			AddRow(int64(2), int64(20), "keep_2.jpg").
			AddRow(int64(3), int64(30), "orphan_3.jpg"))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM blog_article_images WHERE id = ?`,
	)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_articles SET content = ? WHERE id = ?`,
	)).
		WithArgs("<p>still here [[2]]</p>", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &ArticlePatch{Content: patch.Value("<p>still here [[2]]</p>")}
	if err := svc.UpdateArticle(context.Background(), 10, p); err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}

	for _, path := range keep {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("referenced image derivative %s must survive: %v", path, err)
		}
	}
	for _, path := range orphan {
		if _, err := os.Stat(path); err == nil {
			t.Errorf("orphan derivative %s must be removed after commit", path)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateArticleFailedCommitKeepsFiles(t *testing.T) {
	svc, mock, dir := newTestService(t)

	orphan := touchDerivatives(t, dir, "orphan_3.jpg")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT cover_id FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}).AddRow(int64(1)))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT bai.id, bai.file_id, f.path FROM blog_article_images bai JOIN files f ON bai.file_id = f.id WHERE bai.article_id = ?`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path"}).
			AddRow(int64(3), int64(30), "orphan_3.jpg"))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM blog_article_images WHERE id = ?`,
	)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_articles SET content = ? WHERE id = ?`,
	)).
		WithArgs("<p>empty</p>", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	p := &ArticlePatch{Content: patch.Value("<p>empty</p>")}
	if err := svc.UpdateArticle(context.Background(), 10, p); err == nil {
		t.Fatal("expected commit failure")
	}

	// Stale files are deleted only after a successful commit.
	for _, path := range orphan {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("derivative %s must survive a failed commit: %v", path, err)
		}
	}
}

func TestUpdateArticleNullTitleRejected(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := &ArticlePatch{Title: patch.Null[string]()}
	if err := svc.UpdateArticle(context.Background(), 10, p); !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateArticlePicturesRequireContent(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := &ArticlePatch{Pictures: []image.Image{image.NewNRGBA(image.Rect(0, 0, 1, 1))}}
	if err := svc.UpdateArticle(context.Background(), 10, p); !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveArticleDeletesRowsThenFiles(t *testing.T) {
	svc, mock, dir := newTestService(t)

	cover := touchDerivatives(t, dir, "cover_1.jpg")
	inline := touchDerivatives(t, dir, "img_2.jpg")

	mock.MatchExpectationsInOrder(false) // cover and image lookups run concurrently

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT cover_id FROM blog_articles WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT path FROM files WHERE id = ?`,
	)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"path"}).AddRow("cover_1.jpg"))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT bai.id, bai.file_id, f.path FROM blog_article_images bai JOIN files f ON bai.file_id = f.id WHERE bai.article_id = ?`,
	)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path"}).
			AddRow(int64(2), int64(20), "img_2.jpg"))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM blog_articles WHERE id = ?`,
	)).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.RemoveArticle(context.Background(), 10); err != nil {
		t.Fatalf("RemoveArticle: %v", err)
	}

	for _, path := range append(cover, inline...) {
		if _, err := os.Stat(path); err == nil {
			t.Errorf("derivative %s must be removed after delete", path)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
