// internal/blog/articles.go
//
// Query helpers for the blog_articles table.
package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ArticlesTable is the partial-update target for article PATCH calls.
const ArticlesTable = "blog_articles"

// Article mirrors one blog_articles row joined with its cover path, the
// shape the admin editor asks for.
type Article struct {
	ID          int64     `db:"id"           json:"id"`
	CategoryID  *int64    `db:"category_id"  json:"category_id"`
	CoverPath   string    `db:"cover_path"   json:"cover"`
	Title       string    `db:"title"        json:"title"`
	Description *string   `db:"description"  json:"description"`
	Content     string    `db:"content"      json:"content"`
	IsPublished *bool     `db:"is_published" json:"is_published"`
	IsSEO       *bool     `db:"is_seo"       json:"is_seo"`
	URI         string    `db:"uri"          json:"uri"`
	CreatedAt   time.Time `db:"created_at"   json:"date"`
}

// ArticleExists reports whether an article row with id exists.
func ArticleExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `SELECT 1 FROM blog_articles WHERE id = ? LIMIT 1`

	var one int
	err := sqlx.GetContext(ctx, q, &one, stmt, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("blog: article exists %d: %w", id, err)
	}
	return true, nil
}

// GetArticle fetches one article row with its cover path.
func GetArticle(ctx context.Context, q sqlx.ExtContext, id int64) (*Article, error) {
	const stmt = `
        SELECT ba.id, ba.category_id, f.path AS cover_path, ba.title,
               ba.description, ba.content, ba.is_published, ba.is_seo,
               ba.uri, ba.created_at
        FROM   blog_articles ba
        JOIN   files f ON ba.cover_id = f.id
        WHERE  ba.id = ?
        LIMIT  1`

	var a Article
	if err := sqlx.GetContext(ctx, q, &a, stmt, id); err != nil {
		return nil, fmt.Errorf("blog: get article %d: %w", id, err)
	}
	return &a, nil
}

// PublishedArticles returns every published article, newest first, for the
// public blog page.
func PublishedArticles(ctx context.Context, q sqlx.ExtContext) ([]Article, error) {
	const stmt = `
        SELECT ba.id, ba.category_id, f.path AS cover_path, ba.title,
               ba.description, ba.content, ba.is_published, ba.is_seo,
               ba.uri, ba.created_at
        FROM   blog_articles ba
        JOIN   files f ON ba.cover_id = f.id
        WHERE  ba.is_published = TRUE
        ORDER  BY ba.created_at DESC, ba.id DESC`

	var rows []Article
	if err := sqlx.SelectContext(ctx, q, &rows, stmt); err != nil {
		return nil, fmt.Errorf("blog: published articles: %w", err)
	}
	return rows, nil
}

// ArticleCoverID returns the cover file id of an article.
func ArticleCoverID(ctx context.Context, q sqlx.ExtContext, id int64) (int64, error) {
	const stmt = `SELECT cover_id FROM blog_articles WHERE id = ? LIMIT 1`

	var coverID int64
	if err := sqlx.GetContext(ctx, q, &coverID, stmt, id); err != nil {
		return 0, fmt.Errorf("blog: article cover %d: %w", id, err)
	}
	return coverID, nil
}

// newArticle carries the validated column values for InsertArticle.
type newArticle struct {
	CategoryID  *int64
	CoverID     int64
	Title       string
	Description *string
	Content     string
	IsPublished *bool
	IsSEO       *bool
}

// InsertArticle creates a row and returns its id.  uri and the final
// content (with rewritten image placeholders) are written by a follow-up
// partial update inside the same transaction.
func InsertArticle(ctx context.Context, ex sqlx.ExtContext, a newArticle) (int64, error) {
	const stmt = `
        INSERT INTO blog_articles
            (category_id, cover_id, title, description, content, is_published, is_seo, uri)
        VALUES (?, ?, ?, ?, ?, ?, ?, '')`

	res, err := ex.ExecContext(ctx, stmt,
		a.CategoryID, a.CoverID, a.Title, a.Description, a.Content, a.IsPublished, a.IsSEO)
	if err != nil {
		return 0, fmt.Errorf("blog: insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("blog: insert article: %w", err)
	}
	return id, nil
}

// DeleteArticle removes the row; blog_article_images rows cascade at the
// schema level.  files rows are deleted explicitly by the service.
func DeleteArticle(ctx context.Context, ex sqlx.ExtContext, id int64) (bool, error) {
	const stmt = `DELETE FROM blog_articles WHERE id = ?`

	res, err := ex.ExecContext(ctx, stmt, id)
	if err != nil {
		return false, fmt.Errorf("blog: delete article %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("blog: delete article %d: %w", id, err)
	}
	return n == 1, nil
}
