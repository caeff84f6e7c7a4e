package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parties247/internal/domain"
)

type carouselService struct {
	carouselRepo   domain.CarouselRepository
	partyRepo      domain.PartyRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewCarouselService returns a CarouselService resolving party IDs through partyRepo.
func NewCarouselService(carouselRepo domain.CarouselRepository, partyRepo domain.PartyRepository, timeout time.Duration) domain.CarouselService {
	return &carouselService{
		carouselRepo:   carouselRepo,
		partyRepo:      partyRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *carouselService) Create(ctx context.Context, title string, partyIDs []string) (*domain.Carousel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	now := s.now()
	c := domain.NewCarousel(title, partyIDs, now, now)
	if err := s.carouselRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create carousel: %w", err)
	}
	return c, nil
}

// Update changes the title when non-nil and replaces the party list when partyIDs is non-nil.
func (s *carouselService) Update(ctx context.Context, id string, title *string, partyIDs []string) (*domain.Carousel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.carouselRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get carousel")
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		c.Title = t
	}
	if partyIDs != nil {
		c.PartyIDs = domain.DedupeIDs(partyIDs)
	}
	c.UpdatedAt = s.now()
	if err := s.carouselRepo.Update(ctx, c); err != nil {
		return nil, wrapNotFound(err, "update carousel")
	}
	return c, nil
}

func (s *carouselService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return wrapNotFound(s.carouselRepo.Delete(ctx, id), "delete carousel")
}

// Reorder requires ids to name every carousel exactly once.
func (s *carouselService) Reorder(ctx context.Context, ids []string) ([]*domain.Carousel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.carouselRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carousels: %w", err)
	}
	deduped := domain.DedupeIDs(ids)
	if len(deduped) != len(ids) || len(deduped) != len(current) {
		return nil, fmt.Errorf("%w: order must list every carousel exactly once", domain.ErrInvalidInput)
	}
	known := make(map[string]struct{}, len(current))
	for _, c := range current {
		known[c.ID] = struct{}{}
	}
	for _, id := range deduped {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: unknown carousel %q", domain.ErrInvalidInput, id)
		}
	}
	if err := s.carouselRepo.SetOrder(ctx, deduped); err != nil {
		return nil, wrapNotFound(err, "reorder carousels")
	}
	return s.carouselRepo.List(ctx)
}

func (s *carouselService) List(ctx context.Context) ([]*domain.Carousel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	carousels, err := s.carouselRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carousels: %w", err)
	}
	return carousels, nil
}

func (s *carouselService) GetWithParties(ctx context.Context, id string) (*domain.CarouselWithParties, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.carouselRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "get carousel")
	}
	resolved, err := s.resolve(ctx, []*domain.Carousel{c})
	if err != nil {
		return nil, err
	}
	return resolved[0], nil
}

func (s *carouselService) ListWithParties(ctx context.Context) ([]*domain.CarouselWithParties, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	carousels, err := s.carouselRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carousels: %w", err)
	}
	return s.resolve(ctx, carousels)
}

// resolve loads all referenced parties in one query and keeps, per carousel,
// the upcoming ones in shelf order. Deleted or past parties are skipped.
func (s *carouselService) resolve(ctx context.Context, carousels []*domain.Carousel) ([]*domain.CarouselWithParties, error) {
	var ids []string
	for _, c := range carousels {
		ids = append(ids, c.PartyIDs...)
	}
	parties, err := s.partyRepo.ListByIDs(ctx, domain.DedupeIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("load carousel parties: %w", err)
	}
	byID := make(map[string]*domain.Party, len(parties))
	for _, p := range parties {
		byID[p.ID] = p
	}

	cutoff := s.now().Add(-upcomingGrace)
	out := make([]*domain.CarouselWithParties, 0, len(carousels))
	for _, c := range carousels {
		cw := &domain.CarouselWithParties{Carousel: c, Parties: make([]*domain.Party, 0, len(c.PartyIDs))}
		for _, id := range c.PartyIDs {
			p, ok := byID[id]
			if !ok || p.Date.Before(cutoff) {
				continue
			}
			cw.Parties = append(cw.Parties, p)
		}
		out = append(out, cw)
	}
	return out, nil
}
