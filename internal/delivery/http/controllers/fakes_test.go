package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parties247/internal/delivery/http/helpers"
	"parties247/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data field into dest.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(dataBytes, dest))
	}
	return envelope
}

// fakePartyService implements domain.PartyService for handler tests.
type fakePartyService struct {
	party       *domain.Party
	parties     []*domain.Party
	total       int
	report      *domain.ImportReport
	ticketLink  string
	defaultCode string
	err         error

	lastImportURL    string
	lastBatchURLs    []string
	lastID           string
	lastSlug         string
	lastCreate       *domain.Party
	lastPatch        domain.PartyPatch
	lastFilter       domain.PartyFilter
	lastIncludePast  bool
	lastParams       domain.PaginationParams
	lastReferralCode string
	lastDefaultCode  string
}

func (f *fakePartyService) ImportFromURL(_ context.Context, pageURL string) (*domain.Party, error) {
	f.lastImportURL = pageURL
	return f.party, f.err
}

func (f *fakePartyService) ImportBatch(_ context.Context, urls []string) (*domain.ImportReport, error) {
	f.lastBatchURLs = urls
	return f.report, f.err
}

func (f *fakePartyService) Refresh(_ context.Context, id string) (*domain.Party, error) {
	f.lastID = id
	return f.party, f.err
}

func (f *fakePartyService) Create(_ context.Context, p *domain.Party) error {
	f.lastCreate = p
	if f.err != nil {
		return f.err
	}
	p.ID = "party-new"
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Name)
	}
	return nil
}

func (f *fakePartyService) Update(_ context.Context, id string, patch domain.PartyPatch) (*domain.Party, error) {
	f.lastID, f.lastPatch = id, patch
	return f.party, f.err
}

func (f *fakePartyService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakePartyService) GetByID(_ context.Context, id string) (*domain.Party, error) {
	f.lastID = id
	return f.party, f.err
}

func (f *fakePartyService) GetBySlug(_ context.Context, slug string) (*domain.Party, error) {
	f.lastSlug = slug
	return f.party, f.err
}

func (f *fakePartyService) List(_ context.Context, filter domain.PartyFilter, includePast bool, params domain.PaginationParams) ([]*domain.Party, int, error) {
	f.lastFilter, f.lastIncludePast, f.lastParams = filter, includePast, params
	return f.parties, f.total, f.err
}

func (f *fakePartyService) SetReferralCode(_ context.Context, id, code string) (*domain.Party, error) {
	f.lastID, f.lastReferralCode = id, code
	return f.party, f.err
}

func (f *fakePartyService) DefaultReferralCode(_ context.Context) (string, error) {
	return f.defaultCode, f.err
}

func (f *fakePartyService) SetDefaultReferralCode(_ context.Context, code string) error {
	f.lastDefaultCode = code
	return f.err
}

func (f *fakePartyService) TicketLink(_ context.Context, p *domain.Party) (string, error) {
	if f.ticketLink != "" {
		return f.ticketLink, nil
	}
	return p.TicketURL, nil
}

// fakeAnalyticsService implements domain.AnalyticsService for handler tests.
type fakeAnalyticsService struct {
	summary *domain.AnalyticsSummary
	daily   []domain.PartyStats
	err     error

	visits    []string
	clicks    []string
	lastID    string
	lastFrom  time.Time
	lastTo    time.Time
	callCount int
}

func (f *fakeAnalyticsService) RecordVisit(_ context.Context, partyID string) error {
	f.visits = append(f.visits, partyID)
	return f.err
}

func (f *fakeAnalyticsService) RecordClick(_ context.Context, partyID string) error {
	f.clicks = append(f.clicks, partyID)
	return f.err
}

func (f *fakeAnalyticsService) Summary(_ context.Context, from, to time.Time) (*domain.AnalyticsSummary, error) {
	f.callCount++
	f.lastFrom, f.lastTo = from, to
	return f.summary, f.err
}

func (f *fakeAnalyticsService) Daily(_ context.Context, partyID string, from, to time.Time) ([]domain.PartyStats, error) {
	f.callCount++
	f.lastID, f.lastFrom, f.lastTo = partyID, from, to
	return f.daily, f.err
}

// fakeTaxonomyService implements domain.TaxonomyService for handler tests.
type fakeTaxonomyService struct {
	taxonomies []domain.Taxonomy
	parties    []*domain.Party
	total      int
	err        error

	lastAxis   domain.TaxonomyAxis
	lastValue  string
	lastParams domain.PaginationParams
}

func (f *fakeTaxonomyService) ListTaxonomies(_ context.Context) ([]domain.Taxonomy, error) {
	return f.taxonomies, f.err
}

func (f *fakeTaxonomyService) Resolve(axis domain.TaxonomyAxis, value string, _ time.Time) (domain.PartyFilter, error) {
	f.lastAxis, f.lastValue = axis, value
	return domain.PartyFilter{}, f.err
}

func (f *fakeTaxonomyService) ListParties(_ context.Context, axis domain.TaxonomyAxis, value string, params domain.PaginationParams) ([]*domain.Party, int, error) {
	f.lastAxis, f.lastValue, f.lastParams = axis, value, params
	return f.parties, f.total, f.err
}

// fakeCarouselService implements domain.CarouselService for handler tests.
type fakeCarouselService struct {
	carousel  *domain.Carousel
	carousels []*domain.Carousel
	resolved  *domain.CarouselWithParties
	shelves   []*domain.CarouselWithParties
	err       error

	lastID       string
	lastTitle    *string
	lastPartyIDs []string
	lastOrder    []string
}

func (f *fakeCarouselService) Create(_ context.Context, title string, partyIDs []string) (*domain.Carousel, error) {
	f.lastTitle, f.lastPartyIDs = &title, partyIDs
	return f.carousel, f.err
}

func (f *fakeCarouselService) Update(_ context.Context, id string, title *string, partyIDs []string) (*domain.Carousel, error) {
	f.lastID, f.lastTitle, f.lastPartyIDs = id, title, partyIDs
	return f.carousel, f.err
}

func (f *fakeCarouselService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeCarouselService) Reorder(_ context.Context, ids []string) ([]*domain.Carousel, error) {
	f.lastOrder = ids
	return f.carousels, f.err
}

func (f *fakeCarouselService) List(_ context.Context) ([]*domain.Carousel, error) {
	return f.carousels, f.err
}

func (f *fakeCarouselService) GetWithParties(_ context.Context, id string) (*domain.CarouselWithParties, error) {
	f.lastID = id
	return f.resolved, f.err
}

func (f *fakeCarouselService) ListWithParties(_ context.Context) ([]*domain.CarouselWithParties, error) {
	return f.shelves, f.err
}

// fakeArticleService implements domain.ArticleService for handler tests.
type fakeArticleService struct {
	article  *domain.Article
	articles []*domain.Article
	total    int
	err      error

	lastCreate *domain.Article
	lastID     string
	lastPatch  domain.ArticlePatch
	lastSlug   string
	lastParams domain.PaginationParams
}

func (f *fakeArticleService) Create(_ context.Context, a *domain.Article) error {
	f.lastCreate = a
	if f.err != nil {
		return f.err
	}
	a.ID = "article-new"
	if a.Slug == "" {
		a.Slug = domain.Slugify(a.Title)
	}
	return nil
}

func (f *fakeArticleService) Update(_ context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	f.lastID, f.lastPatch = id, patch
	return f.article, f.err
}

func (f *fakeArticleService) Delete(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeArticleService) GetBySlug(_ context.Context, slug string) (*domain.Article, error) {
	f.lastSlug = slug
	return f.article, f.err
}

func (f *fakeArticleService) List(_ context.Context, params domain.PaginationParams) ([]*domain.Article, int, error) {
	f.lastParams = params
	return f.articles, f.total, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	err   error

	lastEmail    string
	lastPassword string
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.token, f.err
}
