// internal/files/files.go
//
// File registry.
//
// Context
// -------
// A row in `files` records one logical uploaded file: an optional original
// name and the canonical stored name (no derivative prefixes or suffixes).
// The actual bytes live on disk as the derivative family described in
// internal/uploads.  Rows are created in the same transaction that
// registers their owning entity, so a rolled-back operation leaves no
// dangling record.
//
// Notes
// -----
// • Helpers accept sqlx.ExtContext so they run both on the pool and inside
//   a transaction.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-cms/atelier/internal/content"
)

// Insert registers a stored file and returns its id.  name is the optional
// client-side original name.
func Insert(ctx context.Context, ex sqlx.ExtContext, name *string, path string) (int64, error) {
	const q = `INSERT INTO files (name, path) VALUES (?, ?)`

	res, err := ex.ExecContext(ctx, q, name, path)
	if err != nil {
		return 0, fmt.Errorf("files: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("files: insert: %w", err)
	}
	return id, nil
}

// Path returns the stored name for id.
func Path(ctx context.Context, q sqlx.ExtContext, id int64) (string, error) {
	const stmt = `SELECT path FROM files WHERE id = ?`

	var path string
	if err := sqlx.GetContext(ctx, q, &path, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", content.ErrNotFound
		}
		return "", fmt.Errorf("files: path %d: %w", id, err)
	}
	return path, nil
}

// Delete removes the registry row.  It returns false when no row matched.
func Delete(ctx context.Context, ex sqlx.ExtContext, id int64) (bool, error) {
	const q = `DELETE FROM files WHERE id = ?`

	res, err := ex.ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("files: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("files: delete %d: %w", id, err)
	}
	return n == 1, nil
}
