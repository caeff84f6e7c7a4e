package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"parties247/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow is a Tuesday evening in Tel Aviv.
var fixedNow = time.Date(2025, 7, 1, 20, 0, 0, 0, domain.SiteTimeZone)

func clock() time.Time { return fixedNow }

// fakePartyRepo is an in-memory PartyRepository for tests.
type fakePartyRepo struct {
	byID       map[string]*domain.Party
	nextID     int
	createErr  error
	lastFilter domain.PartyFilter
	counts     map[domain.Facet]map[string]int
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{byID: make(map[string]*domain.Party), nextID: 1}
}

func (f *fakePartyRepo) Create(ctx context.Context, p *domain.Party) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, e := range f.byID {
		if e.Slug == p.Slug || (p.SourceURL != "" && e.SourceURL == p.SourceURL) {
			return domain.ErrConflict
		}
	}
	p.ID = fmt.Sprintf("p-%d", f.nextID)
	f.nextID++
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePartyRepo) GetByID(ctx context.Context, id string) (*domain.Party, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePartyRepo) find(match func(*domain.Party) bool) (*domain.Party, error) {
	for _, p := range f.byID {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePartyRepo) GetBySlug(ctx context.Context, slug string) (*domain.Party, error) {
	return f.find(func(p *domain.Party) bool { return p.Slug == slug })
}

func (f *fakePartyRepo) GetBySourceURL(ctx context.Context, sourceURL string) (*domain.Party, error) {
	return f.find(func(p *domain.Party) bool { return p.SourceURL == sourceURL })
}

func (f *fakePartyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakePartyRepo) Update(ctx context.Context, p *domain.Party) error {
	if _, ok := f.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePartyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePartyRepo) List(ctx context.Context, filter domain.PartyFilter, params domain.PaginationParams) ([]*domain.Party, int, error) {
	f.lastFilter = filter
	var out []*domain.Party
	for _, p := range f.byID {
		if filter.Region != "" && p.Region != filter.Region {
			continue
		}
		if filter.MusicType != "" && p.MusicType != filter.MusicType {
			continue
		}
		if filter.Age != "" && p.Age != filter.Age {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.From != nil && p.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !p.Date.Before(*filter.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	total := len(out)
	start := min(params.Offset(), total)
	end := total
	if params.PageSize > 0 {
		end = min(start+params.PageSize, total)
	}
	return out[start:end], total, nil
}

func (f *fakePartyRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Party, error) {
	out := make([]*domain.Party, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePartyRepo) CountByFacet(ctx context.Context, facet domain.Facet, since time.Time) (map[string]int, error) {
	return f.counts[facet], nil
}

// fakeSettingsRepo is an in-memory SettingsRepository for tests.
type fakeSettingsRepo struct {
	values map[string]string
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

// fakeScraper returns canned parties keyed by URL.
type fakeScraper struct {
	pages map[string]*domain.Party
	calls []string
}

func (f *fakeScraper) Scrape(ctx context.Context, pageURL string) (*domain.Party, error) {
	f.calls = append(f.calls, pageURL)
	p, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s: all strategies failed", domain.ErrScrapeFailed, pageURL)
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp, nil
}

// fakeEmailService records sent import reports.
type fakeEmailService struct {
	sent []*domain.ImportReportEmailData
	err  error
}

func (f *fakeEmailService) SendImportReport(ctx context.Context, data *domain.ImportReportEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

// fakeCarouselRepo is an in-memory CarouselRepository for tests.
type fakeCarouselRepo struct {
	byID   map[string]*domain.Carousel
	nextID int
}

func newFakeCarouselRepo() *fakeCarouselRepo {
	return &fakeCarouselRepo{byID: make(map[string]*domain.Carousel), nextID: 1}
}

func (f *fakeCarouselRepo) Create(ctx context.Context, c *domain.Carousel) error {
	c.Order = 0
	for _, e := range f.byID {
		if e.Order >= c.Order {
			c.Order = e.Order + 1
		}
	}
	c.ID = fmt.Sprintf("c-%d", f.nextID)
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCarouselRepo) GetByID(ctx context.Context, id string) (*domain.Carousel, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCarouselRepo) Update(ctx context.Context, c *domain.Carousel) error {
	if _, ok := f.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCarouselRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeCarouselRepo) List(ctx context.Context) ([]*domain.Carousel, error) {
	out := make([]*domain.Carousel, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeCarouselRepo) SetOrder(ctx context.Context, ids []string) error {
	for i, id := range ids {
		c, ok := f.byID[id]
		if !ok {
			return domain.ErrNotFound
		}
		c.Order = i
	}
	return nil
}

// fakeArticleRepo is an in-memory ArticleRepository for tests.
type fakeArticleRepo struct {
	byID   map[string]*domain.Article
	nextID int
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{byID: make(map[string]*domain.Article), nextID: 1}
}

func (f *fakeArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	a.ID = fmt.Sprintf("a-%d", f.nextID)
	f.nextID++
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeArticleRepo) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	for _, a := range f.byID {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeArticleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (f *fakeArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	if _, ok := f.byID[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeArticleRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Article, int, error) {
	out := make([]*domain.Article, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

// fakeStatsRepo keeps counters keyed by party and day.
type fakeStatsRepo struct {
	counters map[string]*domain.PartyStats
	known    map[string]bool
	totals   []domain.PartyTotals
}

func newFakeStatsRepo(known ...string) *fakeStatsRepo {
	f := &fakeStatsRepo{counters: make(map[string]*domain.PartyStats), known: make(map[string]bool)}
	for _, id := range known {
		f.known[id] = true
	}
	return f
}

func (f *fakeStatsRepo) Increment(ctx context.Context, partyID string, day time.Time, visits, clicks int) error {
	if !f.known[partyID] {
		return domain.ErrNotFound
	}
	key := partyID + "|" + day.Format(time.DateOnly)
	s, ok := f.counters[key]
	if !ok {
		s = &domain.PartyStats{PartyID: partyID, Day: day}
		f.counters[key] = s
	}
	s.Visits += visits
	s.Clicks += clicks
	return nil
}

func (f *fakeStatsRepo) Totals(ctx context.Context, from, to time.Time) ([]domain.PartyTotals, error) {
	return f.totals, nil
}

func (f *fakeStatsRepo) Daily(ctx context.Context, partyID string, from, to time.Time) ([]domain.PartyStats, error) {
	var out []domain.PartyStats
	for _, s := range f.counters {
		if s.PartyID == partyID && !s.Day.Before(from) && !s.Day.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}
