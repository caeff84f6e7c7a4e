package goout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parties247/internal/domain"
)

type fakePageFetcher struct {
	page    []byte
	err     error
	lastURL string
}

func (f *fakePageFetcher) Fetch(_ context.Context, pageURL string) ([]byte, error) {
	f.lastURL = pageURL
	return f.page, f.err
}

func TestScraper_Scrape(t *testing.T) {
	fetcher := &fakePageFetcher{page: []byte(fullPage)}
	s := NewScraper(fetcher, testImageBase, nil)

	p, err := s.Scrape(context.Background(), "https://WWW.go-out.co/event/1700000-techno-night/?utm_source=ig#top")
	require.NoError(t, err)

	assert.Equal(t, testPageURL, fetcher.lastURL)
	assert.Equal(t, "1700000-techno-night", p.Slug)
	assert.Equal(t, "Techno Night", p.Name)
	assert.Equal(t, time.Date(2026, 10, 22, 21, 0, 0, 0, time.UTC), p.Date)
	assert.Equal(t, testPageURL, p.TicketURL)
	assert.Equal(t, testPageURL, p.SourceURL)
	assert.Equal(t, "The Block", p.Location.Name)
	assert.Equal(t, "https://images.go-out.co/images/cover.jpg", p.ImageURL)
	assert.Equal(t, domain.RegionCenter, p.Region)
	assert.Equal(t, domain.MusicTechno, p.MusicType)
	assert.Equal(t, domain.EventClub, p.EventType)
	assert.Equal(t, domain.Age21, p.Age)
	require.NotNil(t, p.TicketPrice)
	assert.Equal(t, 90.0, *p.TicketPrice)
	assert.Contains(t, p.Tags, "underground")
	assert.Contains(t, p.Tags, "weekend")
}

func TestScraper_errors(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		s := NewScraper(&fakePageFetcher{}, "", nil)
		_, err := s.Scrape(context.Background(), "ftp://example.com/x")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("fetch failure is passed through", func(t *testing.T) {
		cause := errors.Join(domain.ErrScrapeFailed, errors.New("all proxies down"))
		s := NewScraper(&fakePageFetcher{err: cause}, "", nil)
		_, err := s.Scrape(context.Background(), "https://www.go-out.co/event/1")
		require.ErrorIs(t, err, domain.ErrScrapeFailed)
	})
	t.Run("unparseable page is a scrape failure", func(t *testing.T) {
		s := NewScraper(&fakePageFetcher{page: []byte("<html></html>")}, "", nil)
		_, err := s.Scrape(context.Background(), "https://www.go-out.co/event/1")
		require.ErrorIs(t, err, domain.ErrScrapeFailed)
	})
}
