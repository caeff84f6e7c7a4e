package goout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"time"

	"parties247/internal/domain"
	"parties247/internal/metrics"
)

// PageFetcher downloads a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

type scraper struct {
	fetcher      PageFetcher
	imageBaseURL string
	logger       *slog.Logger
}

// NewScraper returns a domain.PartyScraper that fetches, parses and classifies event pages.
// imageBaseURL is the CDN that relative cover images live under.
func NewScraper(fetcher PageFetcher, imageBaseURL string, logger *slog.Logger) domain.PartyScraper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &scraper{fetcher: fetcher, imageBaseURL: imageBaseURL, logger: logger}
}

func (s *scraper) Scrape(ctx context.Context, pageURL string) (*domain.Party, error) {
	start := time.Now()
	canonical, err := domain.CanonicalSourceURL(pageURL)
	if err != nil {
		return nil, err
	}

	page, err := s.fetcher.Fetch(ctx, canonical)
	if err != nil {
		metrics.ScrapeDuration.WithLabelValues("fetch_error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	ev, err := Parse(page, canonical, s.imageBaseURL)
	if err != nil {
		metrics.ScrapeDuration.WithLabelValues("parse_error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrScrapeFailed, canonical, err)
	}
	c := Classify(ev)
	metrics.ScrapeDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "scraped event page", "url", canonical, "title", ev.Title,
		"region", c.Region, "music_type", c.MusicType, "event_type", c.EventType, "age", c.Age)

	return toParty(ev, c, canonical), nil
}

func toParty(ev *ScrapedEvent, c Classification, canonical string) *domain.Party {
	slug := domain.Slugify(lastSegment(canonical))
	if slug == "" {
		slug = domain.Slugify(ev.Title)
	}
	p := &domain.Party{
		Slug:        slug,
		Name:        ev.Title,
		ImageURL:    ev.ImageURL,
		Date:        ev.Start,
		EndDate:     ev.End,
		Location:    domain.Location{Name: ev.Venue, Address: ev.Address, Geo: ev.Geo},
		Description: ev.Description,
		TicketURL:   canonical,
		Region:      c.Region,
		MusicType:   c.MusicType,
		EventType:   c.EventType,
		Age:         c.Age,
		Tags:        c.Tags,
		TicketPrice: ev.MinPrice,
		SourceURL:   canonical,
	}
	if p.Location.Name == "" && c.City != "" {
		p.Location.Name = c.City
	}
	return p
}

func lastSegment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	seg := path.Base(u.Path)
	if seg == "." || seg == "/" {
		return ""
	}
	if decoded, err := url.PathUnescape(seg); err == nil {
		return decoded
	}
	return seg
}
