package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parties247/internal/domain"
)

const maxAnalyticsDays = 366

type analyticsService struct {
	statsRepo      domain.StatsRepository
	partyRepo      domain.PartyRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewAnalyticsService(statsRepo domain.StatsRepository, partyRepo domain.PartyRepository, timeout time.Duration) domain.AnalyticsService {
	return &analyticsService{statsRepo: statsRepo, partyRepo: partyRepo, contextTimeout: timeout, now: time.Now}
}

// statsDay is the site-local calendar day of t, as midnight UTC.
func statsDay(t time.Time) time.Time {
	local := t.In(domain.SiteTimeZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *analyticsService) record(ctx context.Context, partyID string, visits, clicks int) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	partyID = strings.TrimSpace(partyID)
	if partyID == "" {
		return fmt.Errorf("%w: party_id is required", domain.ErrInvalidInput)
	}
	return wrapNotFound(s.statsRepo.Increment(ctx, partyID, statsDay(s.now()), visits, clicks), "increment stats")
}

func (s *analyticsService) RecordVisit(ctx context.Context, partyID string) error {
	return s.record(ctx, partyID, 1, 0)
}

func (s *analyticsService) RecordClick(ctx context.Context, partyID string) error {
	return s.record(ctx, partyID, 0, 1)
}

func validateRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = statsDayUTC(from), statsDayUTC(to)
	if to.Before(from) {
		return from, to, fmt.Errorf("%w: to is before from", domain.ErrInvalidInput)
	}
	if int(to.Sub(from).Hours()/24)+1 > maxAnalyticsDays {
		return from, to, fmt.Errorf("%w: range is longer than %d days", domain.ErrInvalidInput, maxAnalyticsDays)
	}
	return from, to, nil
}

func statsDayUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *analyticsService) Summary(ctx context.Context, from, to time.Time) (*domain.AnalyticsSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	from, to, err := validateRange(from, to)
	if err != nil {
		return nil, err
	}
	totals, err := s.statsRepo.Totals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}
	sum := &domain.AnalyticsSummary{From: from, To: to, Parties: totals}
	for i := range sum.Parties {
		t := &sum.Parties[i]
		t.CTR = domain.ClickThroughRate(t.Visits, t.Clicks)
		sum.Visits += t.Visits
		sum.Clicks += t.Clicks
	}
	sum.CTR = domain.ClickThroughRate(sum.Visits, sum.Clicks)
	return sum, nil
}

// Daily returns one entry per day in [from, to]; days without traffic are zero.
// An unknown party is domain.ErrNotFound.
func (s *analyticsService) Daily(ctx context.Context, partyID string, from, to time.Time) ([]domain.PartyStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	from, to, err := validateRange(from, to)
	if err != nil {
		return nil, err
	}
	if _, err := s.partyRepo.GetByID(ctx, partyID); err != nil {
		return nil, wrapNotFound(err, "get party")
	}
	rows, err := s.statsRepo.Daily(ctx, partyID, from, to)
	if err != nil {
		return nil, wrapNotFound(err, "stats daily")
	}
	byDay := make(map[string]domain.PartyStats, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format(time.DateOnly)] = r
	}
	out := make([]domain.PartyStats, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		row, ok := byDay[d.Format(time.DateOnly)]
		if !ok {
			row = domain.PartyStats{PartyID: partyID}
		}
		row.Day = d
		out = append(out, row)
	}
	return out, nil
}
