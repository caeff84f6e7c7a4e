package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parties247/internal/domain"
)

const techNightURL = "https://www.go-out.co/event/techno-night"

func scrapedParty() *domain.Party {
	price := 60.0
	return &domain.Party{
		Slug:        "techno-night",
		Name:        "Techno Night",
		Date:        fixedNow.Add(48 * time.Hour),
		TicketURL:   techNightURL,
		SourceURL:   techNightURL,
		Region:      domain.RegionCenter,
		MusicType:   domain.MusicTechno,
		EventType:   domain.EventClub,
		Age:         domain.Age18,
		Tags:        []string{"techno", "club"},
		TicketPrice: &price,
	}
}

type partyFixture struct {
	repo     *fakePartyRepo
	settings *fakeSettingsRepo
	scraper  *fakeScraper
	email    *fakeEmailService
	svc      *partyService
}

func newPartyFixture(reportEmail string) *partyFixture {
	f := &partyFixture{
		repo:     newFakePartyRepo(),
		settings: &fakeSettingsRepo{},
		scraper:  &fakeScraper{pages: map[string]*domain.Party{techNightURL: scrapedParty()}},
		email:    &fakeEmailService{},
	}
	svc := NewPartyService(f.repo, f.settings, f.scraper, f.email, PartyServiceConfig{
		ReportEmail:         reportEmail,
		DefaultReferralCode: "p247",
		Timeout:             time.Second,
		ImportTimeout:       5 * time.Second,
	}, discardLogger())
	f.svc = svc.(*partyService)
	f.svc.now = clock
	return f
}

func TestPartyService_ImportFromURL(t *testing.T) {
	ctx := context.Background()

	t.Run("creates party from canonical url", func(t *testing.T) {
		f := newPartyFixture("")
		p, err := f.svc.ImportFromURL(ctx, techNightURL+"/?utm_source=ig")
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		assert.Equal(t, "techno-night", p.Slug)
		assert.Equal(t, techNightURL, p.SourceURL)
		assert.Equal(t, fixedNow, p.CreatedAt)
		assert.Equal(t, []string{techNightURL}, f.scraper.calls)
	})

	t.Run("duplicate source url skips scraping", func(t *testing.T) {
		f := newPartyFixture("")
		first, err := f.svc.ImportFromURL(ctx, techNightURL)
		require.NoError(t, err)

		dup, err := f.svc.ImportFromURL(ctx, techNightURL+"#tickets")
		require.ErrorIs(t, err, domain.ErrConflict)
		require.NotNil(t, dup)
		assert.Equal(t, first.ID, dup.ID)
		assert.Len(t, f.scraper.calls, 1)
	})

	t.Run("slug collision gets numeric suffix", func(t *testing.T) {
		f := newPartyFixture("")
		require.NoError(t, f.repo.Create(ctx, &domain.Party{Slug: "techno-night", Name: "Other"}))
		require.NoError(t, f.repo.Create(ctx, &domain.Party{Slug: "techno-night-2", Name: "Other 2"}))

		p, err := f.svc.ImportFromURL(ctx, techNightURL)
		require.NoError(t, err)
		assert.Equal(t, "techno-night-3", p.Slug)
	})

	t.Run("invalid url", func(t *testing.T) {
		f := newPartyFixture("")
		_, err := f.svc.ImportFromURL(ctx, "ftp://example.com/x")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, f.scraper.calls)
	})

	t.Run("scrape failure", func(t *testing.T) {
		f := newPartyFixture("")
		_, err := f.svc.ImportFromURL(ctx, "https://www.go-out.co/event/missing")
		require.ErrorIs(t, err, domain.ErrScrapeFailed)
	})
}

func TestPartyService_ImportBatch(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("admin@parties247.co.il")

	report, err := f.svc.ImportBatch(ctx, []string{
		techNightURL,
		" " + techNightURL + " ",
		"",
		techNightURL + "?ref=x",
		"https://www.go-out.co/event/missing",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)
	assert.Equal(t, domain.ImportCreated, report.Results[0].Status)
	assert.Equal(t, "techno-night", report.Results[0].Slug)
	assert.Equal(t, domain.ImportDuplicate, report.Results[1].Status)
	assert.Equal(t, report.Results[0].PartyID, report.Results[1].PartyID)
	assert.Empty(t, report.Results[1].Error)
	assert.Equal(t, domain.ImportFailed, report.Results[2].Status)
	assert.Contains(t, report.Results[2].Error, "scrape failed")

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "admin@parties247.co.il", f.email.sent[0].Email)
	assert.Same(t, report, f.email.sent[0].Report)
}

func TestPartyService_ImportBatch_Validation(t *testing.T) {
	f := newPartyFixture("")
	_, err := f.svc.ImportBatch(context.Background(), []string{" ", ""})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	many := make([]string, maxBatchSize+1)
	for i := range many {
		many[i] = techNightURL + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	_, err = f.svc.ImportBatch(context.Background(), many)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPartyService_ImportBatch_EmailFailureIsNotFatal(t *testing.T) {
	f := newPartyFixture("admin@parties247.co.il")
	f.email.err = errors.New("ses down")
	report, err := f.svc.ImportBatch(context.Background(), []string{techNightURL})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
}

func TestPartyService_Refresh(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p, err := f.svc.ImportFromURL(ctx, techNightURL)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, p.ID, domain.PartyPatch{
		Tags:         &[]string{"techno", "Rooftop"},
		ReferralCode: ptr("vip"),
		PixelID:      ptr("px-1"),
	})
	require.NoError(t, err)

	updated := scrapedParty()
	updated.Name = "Techno Night: Sold Out"
	updated.MusicType = domain.MusicHouse
	updated.Tags = []string{"house", "club"}
	f.scraper.pages[techNightURL] = updated

	got, err := f.svc.Refresh(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Techno Night: Sold Out", got.Name)
	assert.Equal(t, domain.MusicHouse, got.MusicType)
	assert.Equal(t, "techno-night", got.Slug)
	assert.Equal(t, "vip", got.ReferralCode)
	assert.Equal(t, "px-1", got.PixelID)
	// techno came from the first scrape and goes away; rooftop was added by hand and stays
	assert.Equal(t, []string{"house", "club", "rooftop"}, got.Tags)
	assert.Equal(t, []string{"house", "club"}, got.ScrapedTags)

	_, err = f.svc.Refresh(ctx, "p-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPartyService_Refresh_ReplacesScrapedTags(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p, err := f.svc.ImportFromURL(ctx, techNightURL)
	require.NoError(t, err)
	require.Equal(t, []string{"techno", "club"}, p.Tags)

	reclassified := scrapedParty()
	reclassified.MusicType = domain.MusicHouse
	reclassified.EventType = domain.EventBar
	reclassified.Tags = []string{"house", "bar"}
	f.scraper.pages[techNightURL] = reclassified

	got, err := f.svc.Refresh(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "bar"}, got.Tags)
	assert.NotContains(t, got.Tags, "techno")
	assert.NotContains(t, got.Tags, "club")

	again := scrapedParty()
	again.Tags = []string{"techno"}
	f.scraper.pages[techNightURL] = again
	got, err = f.svc.Refresh(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"techno"}, got.Tags)
}

func TestPartyService_Refresh_ManualParty(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p := &domain.Party{Name: "Manual", Date: fixedNow, TicketURL: "https://tickets.example/1"}
	require.NoError(t, f.svc.Create(ctx, p))

	_, err := f.svc.Refresh(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPartyService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		party    *domain.Party
		wantErr  error
		wantSlug string
	}{
		{
			name:     "derives slug and normalizes enums",
			party:    &domain.Party{Name: "  Sunset Boat  ", Date: fixedNow, TicketURL: "https://t/1", Region: "Narnia", Tags: []string{" Boat", "boat"}},
			wantSlug: "sunset-boat",
		},
		{
			name:    "missing required fields",
			party:   &domain.Party{Name: "No date"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "bad referral code",
			party:   &domain.Party{Name: "X", Date: fixedNow, TicketURL: "https://t/1", ReferralCode: "a b"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPartyFixture("")
			err := f.svc.Create(ctx, tt.party)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, tt.party.Slug)
			assert.Equal(t, "Sunset Boat", tt.party.Name)
			assert.Equal(t, domain.RegionUnknown, tt.party.Region)
			assert.Equal(t, []string{"boat"}, tt.party.Tags)
		})
	}
}

func TestPartyService_Update(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p, err := f.svc.ImportFromURL(ctx, techNightURL)
	require.NoError(t, err)

	newDate := fixedNow.Add(72 * time.Hour)
	got, err := f.svc.Update(ctx, p.ID, domain.PartyPatch{Name: ptr("Renamed"), Date: &newDate})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, newDate, got.Date)
	assert.Equal(t, domain.MusicTechno, got.MusicType)

	before := fixedNow.Add(-time.Hour)
	_, err = f.svc.Update(ctx, p.ID, domain.PartyPatch{EndDate: &before})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Update(ctx, "nope", domain.PartyPatch{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPartyService_List_DefaultsToUpcoming(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	_, _, err := f.svc.List(ctx, domain.PartyFilter{}, false, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.NotNil(t, f.repo.lastFilter.From)
	assert.Equal(t, fixedNow.Add(-6*time.Hour), *f.repo.lastFilter.From)

	_, _, err = f.svc.List(ctx, domain.PartyFilter{}, true, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Nil(t, f.repo.lastFilter.From)
}

func TestPartyService_TicketLink(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")

	link, err := f.svc.TicketLink(ctx, &domain.Party{TicketURL: "https://www.go-out.co/event/x?lang=he"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.go-out.co/event/x?lang=he&ref=p247", link)

	require.NoError(t, f.svc.SetDefaultReferralCode(ctx, "site"))
	link, err = f.svc.TicketLink(ctx, &domain.Party{TicketURL: "https://www.go-out.co/event/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.go-out.co/event/x?ref=site", link)

	link, err = f.svc.TicketLink(ctx, &domain.Party{TicketURL: "https://www.go-out.co/event/x", ReferralCode: "own"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.go-out.co/event/x?ref=own", link)

	require.NoError(t, f.svc.SetDefaultReferralCode(ctx, ""))
	link, err = f.svc.TicketLink(ctx, &domain.Party{TicketURL: "https://www.go-out.co/event/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.go-out.co/event/x", link)

	require.ErrorIs(t, f.svc.SetDefaultReferralCode(ctx, "no spaces"), domain.ErrInvalidInput)
}

func TestPartyService_SetReferralCode(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p, err := f.svc.ImportFromURL(ctx, techNightURL)
	require.NoError(t, err)

	got, err := f.svc.SetReferralCode(ctx, p.ID, "  promo_1 ")
	require.NoError(t, err)
	assert.Equal(t, "promo_1", got.ReferralCode)

	_, err = f.svc.SetReferralCode(ctx, p.ID, "bad code!")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPartyService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newPartyFixture("")
	p, err := f.svc.ImportFromURL(ctx, techNightURL)
	require.NoError(t, err)

	got, err := f.svc.GetBySlug(ctx, "techno-night")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	_, err = f.svc.GetByID(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, p.ID), domain.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
