package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parties247/internal/domain"
)

type articleService struct {
	articleRepo    domain.ArticleRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewArticleService(articleRepo domain.ArticleRepository, timeout time.Duration) domain.ArticleService {
	return &articleService{articleRepo: articleRepo, contextTimeout: timeout, now: time.Now}
}

// Create derives the slug from the title when none is given. An explicit slug that is
// taken is a conflict; a derived one gets a numeric suffix.
func (s *articleService) Create(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(a.Slug) != "" {
		a.Slug = domain.Slugify(a.Slug)
		if a.Slug == "" {
			return fmt.Errorf("%w: slug has no letters or digits", domain.ErrInvalidInput)
		}
		taken, err := s.articleRepo.SlugExists(ctx, a.Slug)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: slug %q is taken", domain.ErrConflict, a.Slug)
		}
	} else {
		slug, err := uniqueSlug(ctx, s.articleRepo.SlugExists, "", a.Title, "article")
		if err != nil {
			return err
		}
		a.Slug = slug
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	if err := s.articleRepo.Create(ctx, a); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (s *articleService) Update(ctx context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get article")
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		a.Title = t
	}
	if patch.Slug != nil {
		slug := domain.Slugify(*patch.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug has no letters or digits", domain.ErrInvalidInput)
		}
		if slug != a.Slug {
			taken, err := s.articleRepo.SlugExists(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("check slug: %w", err)
			}
			if taken {
				return nil, fmt.Errorf("%w: slug %q is taken", domain.ErrConflict, slug)
			}
			a.Slug = slug
		}
	}
	if patch.Summary != nil {
		a.Summary = *patch.Summary
	}
	if patch.Body != nil {
		a.Body = *patch.Body
	}
	if patch.ImageURL != nil {
		a.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	a.UpdatedAt = s.now()
	if err := s.articleRepo.Update(ctx, a); err != nil {
		return nil, wrapNotFound(err, "update article")
	}
	return a, nil
}

func (s *articleService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return wrapNotFound(s.articleRepo.Delete(ctx, id), "delete article")
}

func (s *articleService) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapNotFound(err, "get article")
	}
	return a, nil
}

func (s *articleService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Article, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	articles, total, err := s.articleRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}
