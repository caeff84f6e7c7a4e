package domain

import (
	"context"
	"time"
)

// Article is an editorial content page.
// swagger:model Article
type Article struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticlePatch holds optional article updates.
type ArticlePatch struct {
	Slug     *string `json:"slug"`
	Title    *string `json:"title"`
	Summary  *string `json:"summary"`
	Body     *string `json:"body"`
	ImageURL *string `json:"image_url"`
}

// ArticleRepository defines storage for articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *Article) error
	GetByID(ctx context.Context, id string) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params PaginationParams) ([]*Article, int, error)
}

// ArticleService defines article management.
type ArticleService interface {
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, id string, patch ArticlePatch) (*Article, error)
	Delete(ctx context.Context, id string) error
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context, params PaginationParams) ([]*Article, int, error)
}
