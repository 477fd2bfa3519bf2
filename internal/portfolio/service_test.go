// internal/portfolio/service_test.go
//
// Unit-tests for the portfolio service using sqlmock.
//
// Run: go test ./internal/portfolio -v

package portfolio

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

func expectProjectExists(mock sqlmock.Sqlmock, id int64, found bool) {
	rows := sqlmock.NewRows([]string{"1"})
	if found {
		rows.AddRow(1)
	}
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM projects WHERE id = ? LIMIT 1`,
	)).
		WithArgs(id).
		WillReturnRows(rows)
}

/*──────────────────────────── categories ──────────────────────────────────*/

func TestCreateCategoryTooLong(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.CreateCategory(context.Background(), &NewCategory{
		Name: "this name is way past the thirty character cap",
	})
	if !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestUpdateCategoryNegativeOrder(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM project_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	p := &CategoryPatch{SortOrder: patch.Value(int64(-1))}
	if err := svc.UpdateCategory(context.Background(), 3, p); !content.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

/*──────────────────────────── projects ────────────────────────────────────*/

func TestUpdateProjectRebuildsCategoryLinks(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectProjectExists(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM project_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM project_category_links WHERE project_id = ?`,
	)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO project_category_links (project_id, category_id) VALUES (?, ?)`,
	)).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE projects SET name = ?, uri = ? WHERE id = ?`,
	)).
		WithArgs("New Name", "new-name-7", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cats := []int64{2}
	p := &ProjectPatch{
		Name:       patch.Value("New Name"),
		Categories: &cats,
	}
	if err := svc.UpdateProject(context.Background(), 7, p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateProjectUnknownCategory(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectProjectExists(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM project_categories WHERE id = ? LIMIT 1`,
	)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	cats := []int64{99}
	p := &ProjectPatch{Categories: &cats}
	err := svc.UpdateProject(context.Background(), 7, p)
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProjectDeletesAsset(t *testing.T) {
	svc, mock, dir := newTestService(t)

	gone := touchDerivatives(t, dir, "asset_4.jpg")

	expectProjectExists(mock, 7, true)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT pa.id, pa.file_id, f.path, pa.sort_order, pa.is_visible FROM project_assets pa JOIN files f ON pa.file_id = f.id WHERE pa.id = ? AND pa.project_id = ? LIMIT 1`,
	)).
		WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path", "sort_order", "is_visible"}).
			AddRow(int64(4), int64(40), "asset_4.jpg", int64(1), true))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM project_assets WHERE id = ? AND project_id = ?`,
	)).
		WithArgs(int64(4), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &ProjectPatch{Assets: []AssetPatch{{ID: 4, Delete: true}}}
	if err := svc.UpdateProject(context.Background(), 7, p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	for _, path := range gone {
		if _, err := os.Stat(path); err == nil {
			t.Errorf("derivative %s must be removed after commit", path)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdateProjectRejectsForeignAsset(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectProjectExists(mock, 7, true)
	mock.ExpectBegin()
	// The directive carries an asset id owned by another project; the
	// project-scoped lookup matches nothing.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT pa.id, pa.file_id, f.path, pa.sort_order, pa.is_visible FROM project_assets pa JOIN files f ON pa.file_id = f.id WHERE pa.id = ? AND pa.project_id = ? LIMIT 1`,
	)).
		WithArgs(int64(4), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path", "sort_order", "is_visible"}))
	mock.ExpectRollback()

	p := &ProjectPatch{Assets: []AssetPatch{{ID: 4, Delete: true}}}
	err := svc.UpdateProject(context.Background(), 7, p)
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateProjectFailedUpdateRemovesDerivatives(t *testing.T) {
	svc, mock, dir := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO projects (name, description, content, uri) VALUES (?, ?, ?, '')`,
	)).
		WithArgs("Skyline", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO files (name, path) VALUES (?, ?)`,
	)).
		WithArgs(nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO project_assets (project_id, file_id, sort_order, is_visible) VALUES (?, ?, ?, TRUE)`,
	)).
		WithArgs(int64(7), int64(40), int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE projects SET uri = ? WHERE id = ?`,
	)).
		WithArgs("skyline-7", int64(7)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.CreateProject(context.Background(), &NewProject{
		Name:    "Skyline",
		Content: "<p>a body comfortably past the thirty character minimum</p>",
		Assets:  []image.Image{image.NewNRGBA(image.Rect(0, 0, 8, 8))},
	})
	if err == nil {
		t.Fatal("expected CreateProject to fail")
	}

	// The asset derivatives were written before the failing update; the
	// deferred uploader rollback must leave the directory empty.
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d derivative files survived the rollback, want 0", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRemoveProjectCollectsAllDerivatives(t *testing.T) {
	svc, mock, dir := newTestService(t)

	a := touchDerivatives(t, dir, "a_0.jpg")
	b := touchDerivatives(t, dir, "b_1.png")

	expectProjectExists(mock, 7, true)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT pa.id, pa.file_id, f.path, pa.sort_order, pa.is_visible FROM project_assets pa JOIN files f ON pa.file_id = f.id WHERE pa.project_id = ? ORDER BY pa.sort_order ASC`,
	)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "file_id", "path", "sort_order", "is_visible"}).
			AddRow(int64(1), int64(10), "a_0.jpg", int64(0), true).
			AddRow(int64(2), int64(11), "b_1.png", int64(1), true))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM projects WHERE id = ?`,
	)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM files WHERE id = ?`,
	)).
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.RemoveProject(context.Background(), 7); err != nil {
		t.Fatalf("RemoveProject: %v", err)
	}

	for _, path := range append(a, b...) {
		if _, err := os.Stat(path); err == nil {
			t.Errorf("derivative %s must be removed after delete", path)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRemoveProjectNotFound(t *testing.T) {
	svc, mock, _ := newTestService(t)

	expectProjectExists(mock, 99, false)

	err := svc.RemoveProject(context.Background(), 99)
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

/*──────────────────────────── slots ───────────────────────────────────────*/

func TestAvailableSlots(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT sort_order FROM project_assets WHERE project_id = ? ORDER BY sort_order ASC`,
	)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sort_order"}).
			AddRow(int64(0)).AddRow(int64(2)).AddRow(int64(4)))

	free, err := AvailableSlots(context.Background(), sqlx.NewDb(db, "sqlmock"), 7)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(free) != 2 || free[0] != 1 || free[1] != 3 {
		t.Fatalf("free = %v, want [1 3]", free)
	}
}
