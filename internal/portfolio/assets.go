// internal/portfolio/assets.go
//
// Query helpers for project_assets, the gallery slots of a project.
//
// Context
// -------
// A project carries at most five assets, addressed by sort_order slots
// 0 through 4.  Deleting an asset frees its slot; later uploads reuse the
// lowest free slot first, so slot numbers stay stable for the admin UI.
package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-cms/atelier/internal/content"
)

// MaxAssets caps the gallery size per project.
const MaxAssets = 5

// Asset is one gallery slot with its stored file name.
type Asset struct {
	ID        int64  `db:"id"         json:"id"`
	FileID    int64  `db:"file_id"    json:"-"`
	Path      string `db:"path"       json:"path"`
	SortOrder int64  `db:"sort_order" json:"sort_order"`
	IsVisible bool   `db:"is_visible" json:"is_visible"`
}

// ProjectAssets returns every asset of a project in slot order.
func ProjectAssets(ctx context.Context, q sqlx.ExtContext, projectID int64) ([]Asset, error) {
	const stmt = `
        SELECT pa.id, pa.file_id, f.path, pa.sort_order, pa.is_visible
        FROM   project_assets pa
        JOIN   files f ON pa.file_id = f.id
        WHERE  pa.project_id = ?
        ORDER  BY pa.sort_order ASC`

	var rows []Asset
	if err := sqlx.SelectContext(ctx, q, &rows, stmt, projectID); err != nil {
		return nil, fmt.Errorf("portfolio: project assets %d: %w", projectID, err)
	}
	return rows, nil
}

// GetAsset fetches one asset row with its stored file name.  The lookup is
// scoped to the owning project, so a directive carrying another project's
// asset id resolves to not-found.
func GetAsset(ctx context.Context, q sqlx.ExtContext, projectID, id int64) (*Asset, error) {
	const stmt = `
        SELECT pa.id, pa.file_id, f.path, pa.sort_order, pa.is_visible
        FROM   project_assets pa
        JOIN   files f ON pa.file_id = f.id
        WHERE  pa.id = ? AND pa.project_id = ?
        LIMIT  1`

	var a Asset
	err := sqlx.GetContext(ctx, q, &a, stmt, id, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("portfolio: get asset %d: %w", id, err)
	}
	return &a, nil
}

// CountAssets returns how many gallery slots a project occupies.
func CountAssets(ctx context.Context, q sqlx.ExtContext, projectID int64) (int, error) {
	const stmt = `SELECT COUNT(*) FROM project_assets WHERE project_id = ?`

	var n int
	if err := sqlx.GetContext(ctx, q, &n, stmt, projectID); err != nil {
		return 0, fmt.Errorf("portfolio: count assets %d: %w", projectID, err)
	}
	return n, nil
}

// AvailableSlots returns the free sort_order slots of a project, lowest
// first.
func AvailableSlots(ctx context.Context, q sqlx.ExtContext, projectID int64) ([]int64, error) {
	const stmt = `SELECT sort_order FROM project_assets WHERE project_id = ? ORDER BY sort_order ASC`

	var used []int64
	if err := sqlx.SelectContext(ctx, q, &used, stmt, projectID); err != nil {
		return nil, fmt.Errorf("portfolio: asset slots %d: %w", projectID, err)
	}

	taken := make(map[int64]bool, len(used))
	for _, slot := range used {
		taken[slot] = true
	}
	var free []int64
	for slot := int64(0); slot < MaxAssets; slot++ {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// InsertAsset registers a file as a gallery asset in the given slot.
func InsertAsset(ctx context.Context, ex sqlx.ExtContext, projectID, fileID, sortOrder int64) (int64, error) {
	const stmt = `
        INSERT INTO project_assets (project_id, file_id, sort_order, is_visible)
        VALUES (?, ?, ?, TRUE)`

	res, err := ex.ExecContext(ctx, stmt, projectID, fileID, sortOrder)
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("portfolio: insert asset: %w", err)
	}
	return id, nil
}

// UpdateAsset moves an asset to a new slot and sets its visibility.  The
// statement is scoped to the owning project; a mismatched id matches no row.
func UpdateAsset(ctx context.Context, ex sqlx.ExtContext, projectID, id, sortOrder int64, isVisible bool) error {
	const stmt = `UPDATE project_assets SET sort_order = ?, is_visible = ? WHERE id = ? AND project_id = ?`

	if _, err := ex.ExecContext(ctx, stmt, sortOrder, isVisible, id, projectID); err != nil {
		return fmt.Errorf("portfolio: update asset %d: %w", id, err)
	}
	return nil
}

// DeleteAsset removes one gallery row, freeing its slot.  Scoped to the
// owning project like UpdateAsset.
func DeleteAsset(ctx context.Context, ex sqlx.ExtContext, projectID, id int64) error {
	const stmt = `DELETE FROM project_assets WHERE id = ? AND project_id = ?`

	if _, err := ex.ExecContext(ctx, stmt, id, projectID); err != nil {
		return fmt.Errorf("portfolio: delete asset %d: %w", id, err)
	}
	return nil
}
