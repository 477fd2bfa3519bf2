// internal/blog/images.go
//
// Query helpers for blog_article_images, the table tying inline `[[id]]`
// content placeholders to file-registry rows.
package blog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ArticleImage is one registered inline image with its stored file name.
type ArticleImage struct {
	ID     int64  `db:"id"      json:"id"`
	FileID int64  `db:"file_id" json:"-"`
	Path   string `db:"path"    json:"path"`
}

// ArticleImages returns every inline image registered for an article.
func ArticleImages(ctx context.Context, q sqlx.ExtContext, articleID int64) ([]ArticleImage, error) {
	const stmt = `
        SELECT bai.id, bai.file_id, f.path
        FROM   blog_article_images bai
        JOIN   files f ON bai.file_id = f.id
        WHERE  bai.article_id = ?`

	var rows []ArticleImage
	if err := sqlx.SelectContext(ctx, q, &rows, stmt, articleID); err != nil {
		return nil, fmt.Errorf("blog: article images %d: %w", articleID, err)
	}
	return rows, nil
}

// InsertArticleImage registers a file as an inline image of an article and
// returns the placeholder id used inside the content body.
func InsertArticleImage(ctx context.Context, ex sqlx.ExtContext, articleID, fileID int64) (int64, error) {
	const stmt = `INSERT INTO blog_article_images (article_id, file_id) VALUES (?, ?)`

	res, err := ex.ExecContext(ctx, stmt, articleID, fileID)
	if err != nil {
		return 0, fmt.Errorf("blog: insert article image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("blog: insert article image: %w", err)
	}
	return id, nil
}

// DeleteArticleImage removes one inline-image row.
func DeleteArticleImage(ctx context.Context, ex sqlx.ExtContext, id int64) error {
	const stmt = `DELETE FROM blog_article_images WHERE id = ?`

	if _, err := ex.ExecContext(ctx, stmt, id); err != nil {
		return fmt.Errorf("blog: delete article image %d: %w", id, err)
	}
	return nil
}
