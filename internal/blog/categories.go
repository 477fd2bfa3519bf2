// internal/blog/categories.go
//
// Query helpers for the blog_categories table.
//
// Context
// -------
// Thin parameterised queries in the repository style used across the
// backend: package-level functions over sqlx.ExtContext so the same helper
// runs on the pool or inside a transaction.  Orchestration (validation,
// slugs, transactions) lives in service.go.
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CategoriesTable is the partial-update target for category PATCH calls.
const CategoriesTable = "blog_categories"

// Category mirrors one blog_categories row.
type Category struct {
	ID          int64   `db:"id"          json:"id"`
	Name        string  `db:"name"        json:"name"`
	Description *string `db:"description" json:"description"`
	IsVisible   *bool   `db:"is_visible"  json:"is_visible"`
	IsSEO       *bool   `db:"is_seo"      json:"is_seo"`
	SortOrder   int64   `db:"sort_order"  json:"sort_order"`
	URI         string  `db:"uri"         json:"uri"`
}

// CategoryExists reports whether a category row with id exists.
func CategoryExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `SELECT 1 FROM blog_categories WHERE id = ? LIMIT 1`

	var one int
	err := sqlx.GetContext(ctx, q, &one, stmt, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blog: category exists %d: %w", id, err)
	}
	return true, nil
}

// GetCategory fetches one category row.
func GetCategory(ctx context.Context, q sqlx.ExtContext, id int64) (*Category, error) {
	const stmt = `
        SELECT id, name, description, is_visible, is_seo, sort_order, uri
        FROM   blog_categories
        WHERE  id = ?
        LIMIT  1`

	var c Category
	if err := sqlx.GetContext(ctx, q, &c, stmt, id); err != nil {
		return nil, fmt.Errorf("blog: get category %d: %w", id, err)
	}
	return &c, nil
}

// AllCategories returns every category ordered for the admin list.
func AllCategories(ctx context.Context, q sqlx.ExtContext) ([]Category, error) {
	const stmt = `
        SELECT id, name, description, is_visible, is_seo, sort_order, uri
        FROM   blog_categories
        ORDER  BY sort_order ASC, id ASC`

	var rows []Category
	if err := sqlx.SelectContext(ctx, q, &rows, stmt); err != nil {
		return nil, fmt.Errorf("blog: all categories: %w", err)
	}
	return rows, nil
}

// InsertCategory creates a row and returns its id.  The uri column is
// filled by the caller in a follow-up partial update because the slug
// embeds the generated id.
func InsertCategory(ctx context.Context, ex sqlx.ExtContext, name string, description *string, isVisible, isSEO *bool, sortOrder int64) (int64, error) {
	const stmt = `
        INSERT INTO blog_categories (name, description, is_visible, is_seo, sort_order, uri)
        VALUES (?, ?, ?, ?, ?, '')`

	res, err := ex.ExecContext(ctx, stmt, name, description, isVisible, isSEO, sortOrder)
	if err != nil {
		return 0, fmt.Errorf("blog: insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("blog: insert category: %w", err)
	}
	return id, nil
}

// DeleteCategory removes the row.  Articles referencing it fall back to
// NULL via the schema's ON DELETE SET NULL.
func DeleteCategory(ctx context.Context, ex sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `DELETE FROM blog_categories WHERE id = ?`

	res, err := ex.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, fmt.Errorf("blog: delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("blog: delete category %d: %w", id, err)
	}
	return n == 1, nil
}
