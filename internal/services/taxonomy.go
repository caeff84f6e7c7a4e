package services

import (
	"context"
	"fmt"
	"time"

	"parties247/internal/domain"
)

type taxonomyService struct {
	partyRepo      domain.PartyRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewTaxonomyService returns a TaxonomyService backed by the party repository.
func NewTaxonomyService(partyRepo domain.PartyRepository, timeout time.Duration) domain.TaxonomyService {
	return &taxonomyService{partyRepo: partyRepo, contextTimeout: timeout, now: time.Now}
}

func (s *taxonomyService) Resolve(axis domain.TaxonomyAxis, value string, now time.Time) (domain.PartyFilter, error) {
	var f domain.PartyFilter
	switch axis {
	case domain.AxisCity:
		r, ok := domain.ParseRegion(value)
		if !ok {
			return f, fmt.Errorf("%w: unknown city %q", domain.ErrInvalidInput, value)
		}
		f.Region = r
	case domain.AxisGenre:
		m, ok := domain.ParseMusicType(value)
		if !ok {
			return f, fmt.Errorf("%w: unknown genre %q", domain.ErrInvalidInput, value)
		}
		f.MusicType = m
	case domain.AxisAudience:
		a, ok := domain.ParseAge(value)
		if !ok {
			return f, fmt.Errorf("%w: unknown audience %q", domain.ErrInvalidInput, value)
		}
		f.Age = a
	case domain.AxisTime:
		from, to, ok := domain.WindowRange(domain.TimeWindow(value), now)
		if !ok {
			return f, fmt.Errorf("%w: unknown time window %q", domain.ErrInvalidInput, value)
		}
		f.From, f.To = &from, &to
	default:
		return f, fmt.Errorf("%w: unknown taxonomy %q", domain.ErrInvalidInput, axis)
	}
	return f, nil
}

func (s *taxonomyService) ListParties(ctx context.Context, axis domain.TaxonomyAxis, value string, params domain.PaginationParams) ([]*domain.Party, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	filter, err := s.Resolve(axis, value, now)
	if err != nil {
		return nil, 0, err
	}
	if filter.From == nil {
		from := now.Add(-upcomingGrace)
		filter.From = &from
	}
	parties, total, err := s.partyRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list parties: %w", err)
	}
	return parties, total, nil
}

func (s *taxonomyService) ListTaxonomies(ctx context.Context) ([]domain.Taxonomy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	since := now.Add(-upcomingGrace)

	facetValues := []struct {
		axis   domain.TaxonomyAxis
		facet  domain.Facet
		values []string
	}{
		{domain.AxisCity, domain.FacetRegion, enumStrings(domain.Regions)},
		{domain.AxisGenre, domain.FacetMusicType, enumStrings(domain.MusicTypes)},
		{domain.AxisAudience, domain.FacetAge, enumStrings(domain.Ages)},
	}

	out := make([]domain.Taxonomy, 0, len(domain.TaxonomyAxes))
	for _, fv := range facetValues {
		counts, err := s.partyRepo.CountByFacet(ctx, fv.facet, since)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", fv.facet, err)
		}
		tax := domain.Taxonomy{Axis: fv.axis, Values: make([]domain.TaxonomyValue, 0, len(fv.values))}
		for _, v := range fv.values {
			tax.Values = append(tax.Values, domain.TaxonomyValue{Value: v, Count: counts[v]})
		}
		out = append(out, tax)
	}

	timeTax := domain.Taxonomy{Axis: domain.AxisTime, Values: make([]domain.TaxonomyValue, 0, len(domain.TimeWindows))}
	for _, w := range domain.TimeWindows {
		from, to, _ := domain.WindowRange(w, now)
		_, total, err := s.partyRepo.List(ctx, domain.PartyFilter{From: &from, To: &to}, domain.PaginationParams{Page: 1, PageSize: 1})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", w, err)
		}
		timeTax.Values = append(timeTax.Values, domain.TaxonomyValue{Value: string(w), Count: total})
	}
	return append(out, timeTax), nil
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
