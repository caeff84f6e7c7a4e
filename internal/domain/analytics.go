package domain

import (
	"context"
	"time"
)

// PartyStats is one day of pre-aggregated counters for a party.
type PartyStats struct {
	PartyID string    `json:"party_id"`
	Day     time.Time `json:"day"`
	Visits  int       `json:"visits"`
	Clicks  int       `json:"clicks"`
}

// PartyTotals is the sum of counters for a party over a range.
type PartyTotals struct {
	PartyID   string  `json:"party_id"`
	PartyName string  `json:"party_name"`
	Slug      string  `json:"slug"`
	Visits    int     `json:"visits"`
	Clicks    int     `json:"clicks"`
	CTR       float64 `json:"ctr"`
}

// AnalyticsSummary is the dashboard payload for a date range.
// swagger:model AnalyticsSummary
type AnalyticsSummary struct {
	From    time.Time     `json:"from"`
	To      time.Time     `json:"to"`
	Visits  int           `json:"visits"`
	Clicks  int           `json:"clicks"`
	CTR     float64       `json:"ctr"`
	Parties []PartyTotals `json:"parties"`
}

// ClickThroughRate returns clicks/visits, or 0 without visits.
func ClickThroughRate(visits, clicks int) float64 {
	if visits <= 0 {
		return 0
	}
	return float64(clicks) / float64(visits)
}

// StatsRepository stores daily counters.
type StatsRepository interface {
	Increment(ctx context.Context, partyID string, day time.Time, visits, clicks int) error
	// Totals returns per-party sums for days in [from, to], visits descending.
	Totals(ctx context.Context, from, to time.Time) ([]PartyTotals, error)
	Daily(ctx context.Context, partyID string, from, to time.Time) ([]PartyStats, error)
}

// AnalyticsService records and summarizes visits and ticket clicks.
type AnalyticsService interface {
	RecordVisit(ctx context.Context, partyID string) error
	RecordClick(ctx context.Context, partyID string) error
	Summary(ctx context.Context, from, to time.Time) (*AnalyticsSummary, error)
	Daily(ctx context.Context, partyID string, from, to time.Time) ([]PartyStats, error)
}
