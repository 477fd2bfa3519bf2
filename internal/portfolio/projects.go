// internal/portfolio/projects.go
//
// Query helpers for the projects table.
package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ProjectsTable is the partial-update target for project PATCH calls.
const ProjectsTable = "projects"

// Project mirrors one projects row.
type Project struct {
	ID          int64     `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"title"`
	Description *string   `db:"description" json:"description"`
	Content     string    `db:"content"     json:"content"`
	URI         string    `db:"uri"         json:"uri"`
	CreatedAt   time.Time `db:"created_at"  json:"date"`
}

// ProjectExists reports whether a project row with id exists.
func ProjectExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `SELECT 1 FROM projects WHERE id = ? LIMIT 1`

	var one int
	err := sqlx.GetContext(ctx, q, &one, stmt, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("portfolio: project exists %d: %w", id, err)
	}
	return true, nil
}

// GetProject fetches one project row.
func GetProject(ctx context.Context, q sqlx.ExtContext, id int64) (*Project, error) {
	const stmt = `
        SELECT id, name, description, content, uri, created_at
        FROM   projects
        WHERE  id = ?
        LIMIT  1`

	var p Project
	if err := sqlx.GetContext(ctx, q, &p, stmt, id); err != nil {
		return nil, fmt.Errorf("portfolio: get project %d: %w", id, err)
	}
	return &p, nil
}

// AllProjects returns every project, newest first.
func AllProjects(ctx context.Context, q sqlx.ExtContext) ([]Project, error) {
	const stmt = `
        SELECT id, name, description, content, uri, created_at
        FROM   projects
        ORDER  BY created_at DESC, id DESC`

	var rows []Project
	if err := sqlx.SelectContext(ctx, q, &rows, stmt); err != nil {
		return nil, fmt.Errorf("portfolio: all projects: %w", err)
	}
	return rows, nil
}

// InsertProject creates a row and returns its id.  The uri slug embeds the
// generated id, so the caller fills it with a follow-up partial update in
// the same transaction.
func InsertProject(ctx context.Context, ex sqlx.ExtContext, name string, description *string, content string) (int64, error) {
	const stmt = `
        INSERT INTO projects (name, description, content, uri)
        VALUES (?, ?, ?, '')`

	res, err := ex.ExecContext(ctx, stmt, name, description, content)
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert project: %w", err)
	}
	return id, nil
}

// DeleteProject removes the row; asset and category-link rows cascade at
// the schema level.  files rows are deleted explicitly by the service.
func DeleteProject(ctx context.Context, ex sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `DELETE FROM projects WHERE id = ?`

	res, err := ex.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, fmt.Errorf("portfolio: delete project %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("portfolio: delete project %d: %w", id, err)
	}
	return n == 1, nil
}
