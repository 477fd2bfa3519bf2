// internal/store/partial_test.go
//
// Unit-tests for the dynamic partial-update executor using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPartialUpdateSortedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// Columns must appear alphabetically regardless of map order, with the
	// id bound last.
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE blog_categories SET description = ?, name = ? WHERE id = ?`,
	)).
		WithArgs("desc", "hello", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := PartialUpdate(context.Background(), db, "blog_categories", int64(7),
		map[string]any{"name": "hello", "description": "desc"})
	if err != nil {
		t.Fatalf("PartialUpdate error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok = true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPartialUpdateNullColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE projects SET description = ? WHERE id = ?`,
	)).
		WithArgs(nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := PartialUpdate(context.Background(), db, "projects", int64(1),
		map[string]any{"description": nil}); err != nil {
		t.Fatalf("PartialUpdate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPartialUpdateEmptyMapIssuesNoSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	ok, err := PartialUpdate(context.Background(), db, "projects", int64(1), nil)
	if err != nil {
		t.Fatalf("PartialUpdate error: %v", err)
	}
	if ok {
		t.Fatal("empty map must report ok = false")
	}
	// No expectations were registered; any SQL would have failed the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestPartialUpdateNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE projects SET name = ? WHERE id = ?`,
	)).
		WithArgs("x", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = PartialUpdate(context.Background(), db, "projects", int64(99),
		map[string]any{"name": "x"})
	if !errors.Is(err, ErrNoRowsAffected) {
		t.Fatalf("expected ErrNoRowsAffected, got %v", err)
	}
}

func TestPartialUpdateRejectsBadColumn(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	for _, col := range []string{"", "Name", "na me", "name; DROP TABLE x"} {
		if _, err := PartialUpdate(context.Background(), db, "projects", int64(1),
			map[string]any{col: "x"}); err == nil {
			t.Errorf("column %q must be rejected", col)
		}
	}
}
