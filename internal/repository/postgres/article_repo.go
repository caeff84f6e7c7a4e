package postgres

import (
	"context"
	"database/sql"

	"parties247/internal/domain"
)

const articleColumns = `id, slug, title, summary, body, image_url, created_at, updated_at`

type articleRepository struct {
	DB *sql.DB
}

// NewArticleRepository returns a domain.ArticleRepository implemented with Postgres.
func NewArticleRepository(db *sql.DB) domain.ArticleRepository {
	return &articleRepository{DB: db}
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	a := &domain.Article{}
	if err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Summary, &a.Body, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *articleRepository) Create(ctx context.Context, a *domain.Article) error {
	query := `
		INSERT INTO articles (slug, title, summary, body, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return mapError(r.DB.QueryRowContext(ctx, query, a.Slug, a.Title, a.Summary, a.Body, a.ImageURL, a.CreatedAt, a.UpdatedAt).Scan(&a.ID))
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return scanArticle(r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return scanArticle(r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug))
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *articleRepository) Update(ctx context.Context, a *domain.Article) error {
	query := `
		UPDATE articles SET slug = $2, title = $3, summary = $4, body = $5, image_url = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, a.ID, a.Slug, a.Title, a.Summary, a.Body, a.ImageURL, a.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *articleRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Article, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2`,
		params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	articles := make([]*domain.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}
