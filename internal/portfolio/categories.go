// internal/portfolio/categories.go
//
// Query helpers for the project_categories table and the project ↔
// category join table.
package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CategoriesTable is the partial-update target for category PATCH calls.
const CategoriesTable = "project_categories"

// Category mirrors one project_categories row.
type Category struct {
	ID        int64  `db:"id"         json:"id"`
	Name      string `db:"name"       json:"name"`
	SortOrder int64  `db:"sort_order" json:"sort_order"`
}

// CategoryExists reports whether a category row with id exists.
func CategoryExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `SELECT 1 FROM project_categories WHERE id = ? LIMIT 1`

	var one int
	err := sqlx.GetContext(ctx, q, &one, stmt, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("portfolio: category exists %d: %w", id, err)
	}
	return true, nil
}

// AllCategories returns every project category in display order.
func AllCategories(ctx context.Context, q sqlx.ExtContext) ([]Category, error) {
	const stmt = `
        SELECT id, name, sort_order
        FROM   project_categories
        ORDER  BY sort_order ASC, id ASC`

	var rows []Category
	if err := sqlx.SelectContext(ctx, q, &rows, stmt); err != nil {
		return nil, fmt.Errorf("portfolio: all categories: %w", err)
	}
	return rows, nil
}

// InsertCategory creates a row and returns its id.
func InsertCategory(ctx context.Context, ex sqlx.ExtContext, name string, sortOrder int64) (int64, error) {
	const stmt = `INSERT INTO project_categories (name, sort_order) VALUES (?, ?)`

	res, err := ex.ExecContext(ctx, stmt, name, sortOrder)
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert category: %w", err)
	}
	return id, nil
}

// DeleteCategory removes the row; join rows cascade at the schema level.
func DeleteCategory(ctx context.Context, ex sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `DELETE FROM project_categories WHERE id = ?`

	res, err := ex.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, fmt.Errorf("portfolio: delete category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("portfolio: delete category %d: %w", id, err)
	}
	return n == 1, nil
}

// ProjectCategoryIDs returns the category ids linked to a project.
func ProjectCategoryIDs(ctx context.Context, q sqlx.ExtContext, projectID int64) ([]int64, error) {
	const stmt = `
        SELECT category_id
        FROM   project_category_links
        WHERE  project_id = ?
        ORDER  BY category_id ASC`

	var ids []int64
	if err := sqlx.SelectContext(ctx, q, &ids, stmt, projectID); err != nil {
		return nil, fmt.Errorf("portfolio: project categories %d: %w", projectID, err)
	}
	return ids, nil
}

// LinkCategory ties a project to a category.
func LinkCategory(ctx context.Context, ex sqlx.ExtContext, projectID, categoryID int64) error {
	const stmt = `INSERT INTO project_category_links (project_id, category_id) VALUES (?, ?)`

	if _, err := ex.ExecContext(ctx, stmt, projectID, categoryID); err != nil {
		return fmt.Errorf("portfolio: link category %d->%d: %w", projectID, categoryID, err)
	}
	return nil
}

// DetachCategories removes every category link of a project.  Updates
// rebuild the set from scratch rather than diffing it.
func DetachCategories(ctx context.Context, ex sqlx.ExtContext, projectID int64) error {
	const stmt = `DELETE FROM project_category_links WHERE project_id = ?`

	if _, err := ex.ExecContext(ctx, stmt, projectID); err != nil {
		return fmt.Errorf("portfolio: detach categories %d: %w", projectID, err)
	}
	return nil
}
